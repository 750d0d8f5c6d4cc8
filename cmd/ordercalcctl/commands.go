package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/drstein77/ordercalc/internal/app"
	"github.com/drstein77/ordercalc/internal/calc"
	"github.com/drstein77/ordercalc/internal/catalog"
	"github.com/drstein77/ordercalc/internal/export"
	"github.com/drstein77/ordercalc/internal/logger"
	"github.com/drstein77/ordercalc/internal/models"
	"github.com/drstein77/ordercalc/internal/storage"
)

const dateLayout = "2006-01-02"

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:   "ordercalcctl",
		Usage:  "inspect and maintain the order calculator store",
		Writer: stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-file", Aliases: []string{"f"}, Value: "ordercalc.json", EnvVars: []string{"DATA_FILE"}, Usage: "json data file"},
			&cli.StringFlag{Name: "database-uri", Aliases: []string{"d"}, EnvVars: []string{"DATABASE_URI"}, Usage: "postgres connection string"},
			&cli.StringFlag{Name: "migrations-dir", Value: "migrations", EnvVars: []string{"MIGRATIONS_DIR"}, Usage: "directory with postgres migrations"},
			&cli.StringFlag{Name: "redis-addr", Aliases: []string{"r"}, EnvVars: []string{"REDIS_ADDR"}, Usage: "redis address"},
			&cli.StringFlag{Name: "redis-password", EnvVars: []string{"REDIS_PASSWORD"}, Usage: "redis password"},
			&cli.IntFlag{Name: "redis-db", EnvVars: []string{"REDIS_DB"}, Usage: "redis database number"},
			&cli.StringFlag{Name: "tz", Value: "Local", EnvVars: []string{"TIMEZONE"}, Usage: "calendar used for day and month boundaries"},
			&cli.IntFlag{Name: "window", Aliases: []string{"w"}, Value: calc.DefaultFrequencyWindow, EnvVars: []string{"FREQUENCY_WINDOW"}, Usage: "recent orders used for frequency ranking"},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: "log to stderr at this level"},
		},
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "load a catalog into an empty store",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "catalog", Aliases: []string{"c"}, EnvVars: []string{"CATALOG_FILE"}, Usage: "catalog file, the built-in one when empty"},
				},
				Action: seedAction,
			},
			{
				Name:  "analytics",
				Usage: "monthly sales report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "month", Usage: "month like 2024-01, the current one when empty"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "json, pdf or png"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, .zip or .tar wraps it in an archive"},
				},
				Action: analyticsAction,
			},
			{
				Name:   "frequent",
				Usage:  "list the most frequently ordered products",
				Action: frequentAction,
			},
			{
				Name:  "export",
				Usage: "export order history between two dates",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Required: true, Usage: "first day like 2024-01-01"},
					&cli.StringFlag{Name: "end", Required: true, Usage: "last day like 2024-01-31"},
					&cli.StringFlag{Name: "format", Value: "csv", Usage: "csv, pdf or png"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, .zip or .tar wraps it in an archive"},
				},
				Action: exportAction,
			},
			{
				Name:  "backup",
				Usage: "write products and history as one json document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, .zip or .tar wraps it in an archive"},
				},
				Action: backupAction,
			},
			{
				Name:  "restore",
				Usage: "replace products and history from a backup",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Required: true, Usage: "backup file, optionally .zip or .tar"},
				},
				Action: restoreAction,
			},
		},
	}
}

func location(c *cli.Context) (*time.Location, error) {
	tz := c.String("tz")
	if tz == "" || tz == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}

func openStore(c *cli.Context) (*storage.MemoryStorage, error) {
	log := &logger.Logger{}
	if level := c.String("log-level"); level != "" {
		var err error
		if log, err = logger.NewLogger(level); err != nil {
			return nil, err
		}
	}

	loc, err := location(c)
	if err != nil {
		return nil, err
	}

	return app.OpenStore(c.Context, app.StoreConfig{
		DatabaseDSN:     c.String("database-uri"),
		MigrationsDir:   c.String("migrations-dir"),
		RedisAddr:       c.String("redis-addr"),
		RedisPassword:   c.String("redis-password"),
		RedisDB:         c.Int("redis-db"),
		DataFile:        c.String("data-file"),
		Location:        loc,
		FrequencyWindow: c.Int("window"),
	}, log)
}

func seedAction(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	products, err := catalog.Load(c.String("catalog"))
	if err != nil {
		return err
	}
	seeded, err := store.SeedProducts(c.Context, products)
	if err != nil {
		return err
	}
	if !seeded {
		fmt.Fprintln(c.App.Writer, "catalog already present, nothing seeded")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "seeded %d products\n", len(products))
	return nil
}

func analyticsAction(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	now := time.Now().In(store.Location())
	year, month := now.Year(), int(now.Month())
	if raw := c.String("month"); raw != "" {
		t, err := time.Parse("2006-01", raw)
		if err != nil {
			return fmt.Errorf("month must look like 2024-01: %w", err)
		}
		year, month = t.Year(), int(t.Month())
	}

	report := store.MonthlyAnalytics(c.Context, year, month)
	format := c.String("format")
	if format != "json" && report.Orders == 0 {
		return fmt.Errorf("no orders in %04d-%02d", year, month)
	}

	return writeOutput(c, func(w io.Writer) error {
		switch format {
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		case "pdf":
			return export.AnalyticsPDF(w, report)
		case "png":
			return export.DailySalesPNG(w, report.DailySales)
		default:
			return fmt.Errorf("unknown format %q", format)
		}
	})
}

func frequentAction(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	for i, p := range store.FrequentProducts(c.Context, c.Int("window")) {
		fmt.Fprintf(c.App.Writer, "%d. %s - %s\n", i+1, p.Name, p.Size)
	}
	return nil
}

func exportAction(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	start, err := time.ParseInLocation(dateLayout, c.String("start"), store.Location())
	if err != nil {
		return fmt.Errorf("start must be a date like 2024-01-31: %w", err)
	}
	end, err := time.ParseInLocation(dateLayout, c.String("end"), store.Location())
	if err != nil {
		return fmt.Errorf("end must be a date like 2024-01-31: %w", err)
	}

	orders := store.History(c.Context, &start, &end)
	if len(orders) == 0 {
		return errors.New("no orders in the selected range")
	}
	products := store.Products(c.Context)

	format := c.String("format")
	return writeOutput(c, func(w io.Writer) error {
		switch format {
		case "csv":
			return export.HistoryCSV(w, orders, products, store.Location())
		case "pdf":
			return export.HistoryPDF(w, orders, products, store.Location(), c.String("start"), c.String("end"))
		case "png":
			return export.HistoryPNG(w, orders, store.Location(), start, end)
		default:
			return fmt.Errorf("unknown format %q", format)
		}
	})
}

func backupAction(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	backup := store.ExportBackup(c.Context)
	return writeOutput(c, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(backup)
	})
}

func restoreAction(c *cli.Context) error {
	in, err := openInput(c.String("in"), ".json")
	if err != nil {
		return err
	}
	defer in.Close()

	var backup models.Backup
	if err := json.NewDecoder(in).Decode(&backup); err != nil {
		return fmt.Errorf("invalid backup file: %w", err)
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ImportBackup(c.Context, backup); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "restored %d products and %d orders\n", len(backup.Products), len(backup.History))
	return nil
}
