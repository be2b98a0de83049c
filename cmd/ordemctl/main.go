// ordemctl herramientas de línea de comandos para órdenes de compra.
//
// Uso:
//
//	go run ./cmd/ordemctl render [-o salida.pdf] orden.json
//	go run ./cmd/ordemctl next-number [-year 2024] ordens.json
//	go run ./cmd/ordemctl delete <id>
//	go run ./cmd/ordemctl token -user <id> [-name "Nome"]
//
// render y next-number trabajan offline sobre JSON (camelCase o snake_case, "-" = stdin).
// delete usa la base configurada (DB_*) y pide confirmación por stdin.
// token emite un X-Session-Token firmado con SESSION_JWT_SECRET (sin portal).
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jhoicas/ordem-compra/internal/application/dto"
	"github.com/jhoicas/ordem-compra/internal/application/purchasing"
	"github.com/jhoicas/ordem-compra/internal/domain"
	"github.com/jhoicas/ordem-compra/internal/domain/entity"
	domainpurchasing "github.com/jhoicas/ordem-compra/internal/domain/purchasing"
	infrapdf "github.com/jhoicas/ordem-compra/internal/infrastructure/pdf"
	"github.com/jhoicas/ordem-compra/internal/infrastructure/postgres"
	"github.com/jhoicas/ordem-compra/pkg/config"
	"github.com/jhoicas/ordem-compra/pkg/jwt"
	"github.com/jhoicas/ordem-compra/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: "development", Level: cfg.Log.Level, Output: os.Stderr})

	ctx := context.Background()
	args := os.Args[2:]
	switch os.Args[1] {
	case "render":
		err = runRender(ctx, cfg, log, args)
	case "next-number":
		err = runNextNumber(cfg, args, os.Stdout)
	case "delete":
		err = runDelete(ctx, cfg, log, args, os.Stdin, os.Stdout)
	case "token":
		err = runToken(cfg.Session, args, os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "uso: ordemctl render|next-number|delete|token [opciones] <arg>")
}

func runRender(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	out := fs.String("o", "", "archivo de salida (por defecto {razón social}-{número}.pdf)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("se espera un archivo JSON con la orden")
	}
	raw, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}
	order, err := orderFromJSON(raw)
	if err != nil {
		return err
	}

	planner := infrapdf.NewPlanner(infrapdf.OptionsFromConfig(cfg.PDF, cfg.Order.TaxColumns), infrapdf.NewFPDFMeasurer())
	assets := infrapdf.NewAssetLoader(cfg.PDF.LogoPath, cfg.PDF.SignaturePath, cfg.PDF.AssetTimeout, log)
	uc := purchasing.NewPDFUseCase(nil, infrapdf.NewMarotoOrderRenderer(planner), assets, nil, entity.DefaultOrganization(), log)

	doc, err := uc.Render(ctx, order)
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = doc.Filename
	}
	if err := os.WriteFile(path, doc.Bytes, 0o644); err != nil {
		return fmt.Errorf("escribir %s: %w", path, err)
	}
	fmt.Printf("%s (%d páginas)\n", path, doc.Pages)
	return nil
}

// orderFromJSON decodifica una orden sin exigir los campos obligatorios del alta.
func orderFromJSON(raw []byte) (entity.Order, error) {
	req, err := dto.DecodeOrder(raw)
	if err != nil {
		return entity.Order{}, err
	}
	date := time.Now()
	if req.DataOrdem != "" {
		if date, err = purchasing.ParseOrderDate(req.DataOrdem); err != nil {
			return entity.Order{}, err
		}
	}
	o := purchasing.OrderFromRequest(req, date)
	if o.Status == "" {
		o.Status = entity.OrderStatusOpen
	}
	return o, nil
}

func runNextNumber(cfg *config.Config, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("next-number", flag.ContinueOnError)
	year := fs.Int("year", time.Now().Year(), "año de la orden (formato year)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("se espera un archivo JSON con la lista de órdenes")
	}
	raw, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}
	orders, err := dto.DecodeOrders(raw)
	if err != nil {
		return err
	}
	numbers := make([]string, 0, len(orders))
	for _, o := range orders {
		numbers = append(numbers, o.NumeroOrdem)
	}
	_, err = fmt.Fprintln(w, numberingFromConfig(cfg.Order).Next(numbers, *year))
	return err
}

func runDelete(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string, in io.Reader, w io.Writer) error {
	if len(args) != 1 {
		return errors.New("se espera el id de la orden")
	}
	if cfg.DB.Driver != config.DriverPostgres {
		return fmt.Errorf("delete requiere DB_DRIVER=%s", config.DriverPostgres)
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	uc := purchasing.NewOrderUseCase(
		postgres.NewOrderRepository(pool), postgres.NewTxRunner(pool),
		numberingFromConfig(cfg.Order), log,
	)
	err = uc.Delete(ctx, args[0], stdinConfirmer(in, w))
	switch {
	case errors.Is(err, domain.ErrNotConfirmed):
		fmt.Fprintln(w, "Cancelado.")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintln(w, "Ordem excluída.")
	return nil
}

// stdinConfirmer pregunta antes de borrar; solo "s"/"sim"/"y"/"yes" confirman.
func stdinConfirmer(in io.Reader, w io.Writer) purchasing.Confirmer {
	return purchasing.ConfirmFunc(func(_ context.Context, o *entity.Order) bool {
		fmt.Fprintf(w, "Tem certeza que deseja excluir a ordem Nº %s (%s)? [s/N] ", o.Number, o.Supplier.LegalName)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "s", "sim", "y", "yes":
			return true
		}
		return false
	})
}

func runToken(c config.SessionConfig, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fs.String("user", "", "id del usuario")
	name := fs.String("name", "", "nombre para mostrar")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return errors.New("-user es obligatorio")
	}
	token, err := jwt.Generate(c.JWTSecret, *user, *name, c.JWTIssuer, c.JWTExpiration)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

func numberingFromConfig(c config.OrderConfig) domainpurchasing.Numbering {
	return domainpurchasing.Numbering{
		Format:    c.NumberFormat,
		Floor:     c.NumberFloor,
		Width:     c.NumberWidth,
		Separator: c.NumberSeparator,
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", path, err)
	}
	return b, nil
}
