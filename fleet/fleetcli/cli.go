package fleetcli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/fleetscope/fleet-app/fleet/api"
	"github.com/fleetscope/fleet-app/fleet/constants"
	"github.com/fleetscope/fleet-app/fleet/database"
	"github.com/fleetscope/fleet-app/fleet/health"
	"github.com/fleetscope/fleet-app/fleet/ifta"
	"github.com/fleetscope/fleet-app/fleet/ifta/ratestore"
	"github.com/fleetscope/fleet-app/fleet/repository"
	"github.com/fleetscope/fleet-app/fleet/repository/postgres"
	"github.com/fleetscope/fleet-app/fleet/service"
	"github.com/fleetscope/fleet-app/fleet/web"
	"github.com/fleetscope/fleet-app/log"
)

// App Name and usage.  Edit them here to prevent breaking tests
const Name = "fleet"
const Usage = "Fleet compliance and fuel tax CLI"

func GetApp() *cli.App {
	return setUpApp()
}

func setUpApp() *cli.App {
	app := cli.NewApp()
	app.Name = Name
	app.Usage = Usage
	app.Version = constants.Version
	var orgID, rateFile, destFile string
	var year, quarter int
	app.Commands = []cli.Command{
		{
			Name:  "start-api",
			Usage: "Start the API",
			Action: func(c *cli.Context) error {
				svc, _, db, err := buildService()
				if err != nil {
					return err
				}
				defer db.Close()

				fmt.Fprintf(app.Writer, "%s\n", "Starting fleet API...")

				srv := &http.Server{
					Handler:      web.NewAPIRouter(api.NewAPI(svc, health.NewHealthChecker(db))),
					Addr:         ":3000",
					ReadTimeout:  10 * time.Second,
					WriteTimeout: 20 * time.Second,
					IdleTimeout:  120 * time.Second,
				}

				return srv.ListenAndServe()
			},
		},
		{
			Name:     "compliance-summary",
			Category: "Compliance tools",
			Usage:    "Print the compliance dashboard metrics for an organization",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "org-id",
					Usage:       "UUID of the organization",
					Destination: &orgID,
				},
			},
			Action: func(c *cli.Context) error {
				id := uuid.Parse(orgID)
				if id == nil {
					return errors.New("organization ID (--org-id) is required")
				}

				svc, _, db, err := buildService()
				if err != nil {
					return err
				}
				defer db.Close()

				metrics, err := svc.GetComplianceSummary(context.Background(), id, time.Now().UTC())
				if err != nil {
					return err
				}

				return printJSON(app, metrics)
			},
		},
		{
			Name:     "upcoming-deadlines",
			Category: "Compliance tools",
			Usage:    "Print the ranked compliance deadline list for an organization",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "org-id",
					Usage:       "UUID of the organization",
					Destination: &orgID,
				},
			},
			Action: func(c *cli.Context) error {
				id := uuid.Parse(orgID)
				if id == nil {
					return errors.New("organization ID (--org-id) is required")
				}

				svc, _, db, err := buildService()
				if err != nil {
					return err
				}
				defer db.Close()

				items, err := svc.GetUpcomingDeadlines(context.Background(), id, time.Now().UTC())
				if err != nil {
					return err
				}

				return printJSON(app, items)
			},
		},
		{
			Name:     "generate-ifta-report",
			Category: "Fuel tax tools",
			Usage:    "Build a draft quarterly fuel tax report from trip and fuel records",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "org-id",
					Usage:       "UUID of the organization",
					Destination: &orgID,
				},
				cli.IntFlag{
					Name:        "year",
					Usage:       "Reporting year",
					Destination: &year,
				},
				cli.IntFlag{
					Name:        "quarter",
					Usage:       "Reporting quarter (1-4)",
					Destination: &quarter,
				},
				cli.StringFlag{
					Name:        "rate-file",
					Usage:       "Path to the TOML rate file; defaults to the configured location",
					Destination: &rateFile,
				},
			},
			Action: func(c *cli.Context) error {
				id := uuid.Parse(orgID)
				if id == nil {
					return errors.New("organization ID (--org-id) is required")
				}

				svc, cfg, db, err := buildService()
				if err != nil {
					return err
				}
				defer db.Close()

				path := rateFile
				if path == "" {
					path = cfg.RateFilePath
				}
				rateYear, rateQuarter, rates, err := ratestore.Load(path)
				if err != nil {
					return errors.Wrapf(err, "unable to load rate file %s", path)
				}
				if rateYear != year || rateQuarter != quarter {
					return errors.Errorf("rate file covers Q%d %d, not Q%d %d",
						rateQuarter, rateYear, quarter, year)
				}

				report, err := svc.GenerateIFTAReport(context.Background(), id, year, quarter, rates)
				if err != nil {
					return err
				}

				fmt.Fprintf(app.Writer, "Created draft report %s with %d jurisdictions\n",
					report.ID, len(report.Calculations))
				return printJSON(app, ifta.Summarize(*report))
			},
		},
		{
			Name:     "import-ifta-rates",
			Category: "Fuel tax tools",
			Usage:    "Validate a quarterly rate file and install it at the configured location",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:        "file",
					Usage:       "Path to the TOML rate file to import",
					Destination: &rateFile,
				},
				cli.StringFlag{
					Name:        "dest",
					Usage:       "Destination path; defaults to the configured location",
					Destination: &destFile,
				},
			},
			Action: func(c *cli.Context) error {
				if rateFile == "" {
					return errors.New("rate file (--file) is required")
				}

				rateYear, rateQuarter, rates, err := ratestore.Load(rateFile)
				if err != nil {
					return errors.Wrapf(err, "unable to load rate file %s", rateFile)
				}

				dest := destFile
				if dest == "" {
					cfg, err := service.LoadConfig()
					if err != nil {
						return err
					}
					dest = cfg.RateFilePath
				}

				contents, err := os.ReadFile(rateFile)
				if err != nil {
					return err
				}
				if err := os.WriteFile(dest, contents, 0600); err != nil {
					return errors.Wrapf(err, "unable to write rate file %s", dest)
				}

				fmt.Fprintf(app.Writer, "Imported %d jurisdiction rates for Q%d %d to %s\n",
					len(rates), rateQuarter, rateYear, dest)
				return nil
			},
		},
	}
	return app
}

func buildService() (service.Service, *service.Config, *sql.DB, error) {
	dbCfg, err := database.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, nil, nil, err
	}

	svcCfg, err := service.LoadConfig()
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	var repo repository.Repository = postgres.NewRepository(db)
	svc := service.NewService(repo, svcCfg)

	log.API.Info("fleet service initialized")

	return svc, svcCfg, db, nil
}

func printJSON(app *cli.App, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Writer, "%s\n", out)
	return nil
}
