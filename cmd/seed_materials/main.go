// seed_materials da de alta materias primas a partir de un CSV exportado de la hoja de compras.
//
// Uso: go run ./cmd/seed_materials [ruta/materiales.csv]
// Por defecto busca materiales.csv en la raíz del módulo. El archivo viene en ISO-8859-1
// separado por ';' con encabezado:
//
//	codigo;nombre;unidad;costo;consumo_promedio;lead_time_dias;stock_seguridad;existencia_inicial
//
// Los códigos ya registrados se omiten.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Produccion-api/pkg/config"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var seedActor = entity.Actor{UserID: "seed", Name: "seed_materials", Role: entity.RoleAdmin}

func main() {
	csvPath := filepath.Join(findModuleRoot(), "materiales.csv")
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", csvPath).Msg("abrir CSV")
	}
	defer f.Close()

	rows, err := parseMaterials(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migración del esquema")
		}
	}

	ledger := inventory.NewLedgerUseCase(postgres.NewTxRunner(pool), postgres.Repos(pool), log.Component("seed"))
	var created, skipped int
	for _, in := range rows {
		if _, err := ledger.RegisterMaterial(ctx, in, seedActor); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				skipped++
				log.Warn().Str("material_id", in.MaterialID).Msg("material ya registrado, se omite")
				continue
			}
			log.Fatal().Err(err).Str("material_id", in.MaterialID).Msg("registrar material")
		}
		created++
	}

	log.Info().Int("creados", created).Int("omitidos", skipped).Str("path", csvPath).Msg("carga de materiales terminada")
}

// parseMaterials lee el CSV ya decodificado a UTF-8. Acepta coma decimal.
func parseMaterials(r io.Reader) ([]inventory.MaterialInput, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 8

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}

	var out []inventory.MaterialInput
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		in, err := toMaterial(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		out = append(out, in)
	}
}

func toMaterial(rec []string) (inventory.MaterialInput, error) {
	var nums [4]decimal.Decimal
	for i, col := range []int{3, 4, 6, 7} {
		d, err := parseDecimal(rec[col])
		if err != nil {
			return inventory.MaterialInput{}, fmt.Errorf("columna %d: %w", col+1, err)
		}
		nums[i] = d
	}
	lead := 0
	if s := strings.TrimSpace(rec[5]); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return inventory.MaterialInput{}, fmt.Errorf("lead_time_dias: %w", err)
		}
		lead = n
	}
	return inventory.MaterialInput{
		MaterialID:     strings.ToUpper(strings.TrimSpace(rec[0])),
		Name:           strings.TrimSpace(rec[1]),
		Unit:           strings.TrimSpace(rec[2]),
		CostPerUnit:    nums[0],
		AvgConsumption: nums[1],
		LeadTimeDays:   lead,
		SafetyStock:    nums[2],
		OpeningQty:     nums[3],
	}, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
