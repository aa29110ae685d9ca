// Command gridctl manages records in a running record service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/docopt/docopt-go"
	"gopkg.in/yaml.v3"

	"github.com/celerix-dev/celerix-grid/internal/config"
	"github.com/celerix-dev/celerix-grid/internal/engine"
	"github.com/celerix-dev/celerix-grid/pkg/filter"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
	"github.com/celerix-dev/celerix-grid/pkg/sdk"
)

const GridCtlVersion = "0.1.0"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", 0)
}

func main() {
	usage := `Grid record control.

The record service url defaults to upstream.url from the grid config
(GRID_UPSTREAM_URL), or http://localhost:7002/api.

Usage:
    gridctl list [--url=<url>] [--name=<name>] [--email=<email>] [--role=<role>]
    gridctl get [--url=<url>] <id>
    gridctl create [--url=<url>] --name=<name> --email=<email> --role=<role>
    gridctl set [--url=<url>] <id> <field> <value>
    gridctl delete [--url=<url>] <id>
    gridctl import [--url=<url>] <file>
    gridctl export [--url=<url>] <file>
    gridctl ping [--url=<url>]

Options:
    -h --help          Show this screen.
    --version          Show version.
    --url=<url>        Record service API url.
    --name=<name>      Record name, or a name filter for list.
    --email=<email>    Record email, or an email filter for list.
    --role=<role>      Record role, or a role filter for list.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], GridCtlVersion)
	if err != nil {
		panic(err)
	}

	client, cfg := newClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout(cfg))
	defer cancel()

	switch {
	case flag(opts, "list"):
		err = list(ctx, client, opts)
	case flag(opts, "get"):
		err = get(ctx, client, opts)
	case flag(opts, "create"):
		err = create(ctx, client, opts)
	case flag(opts, "set"):
		err = set(ctx, client, opts)
	case flag(opts, "delete"):
		err = remove(ctx, client, opts)
	case flag(opts, "import"):
		err = importSeed(ctx, client, opts)
	case flag(opts, "export"):
		err = exportSeed(ctx, client, opts)
	case flag(opts, "ping"):
		err = ping(ctx, client)
	}
	if err != nil {
		Err.Printf("error: %v", err)
		os.Exit(1)
	}
}

func flag(opts docopt.Opts, name string) bool {
	v, _ := opts.Bool(name)
	return v
}

func newClient(opts docopt.Opts) (*sdk.Client, *config.Config) {
	cfg, err := config.Load("")
	if err != nil {
		Err.Fatalf("error: %v", err)
	}
	if url, _ := opts.String("--url"); url != "" {
		cfg.Upstream.URL = url
	}
	if cfg.Upstream.URL == "" {
		cfg.Upstream.URL = "http://localhost:7002/api"
	}

	client, err := sdk.NewClient(sdk.Config{
		BaseURL:      cfg.Upstream.URL,
		Timeout:      cfg.Upstream.Timeout,
		MaxRetries:   cfg.Upstream.MaxRetries,
		RetryBackoff: cfg.Upstream.RetryBackoff,
	}, nil)
	if err != nil {
		Err.Fatalf("error: %v", err)
	}
	return client, cfg
}

// commandTimeout bounds a whole command; import and export make many calls.
func commandTimeout(cfg *config.Config) time.Duration {
	return 20 * cfg.Upstream.Timeout
}

func recordID(opts docopt.Opts) (int64, error) {
	raw, _ := opts.String("<id>")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func printYAML(v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	Out.Print(string(out))
	return nil
}

func list(ctx context.Context, client *sdk.Client, opts docopt.Opts) error {
	var spec filter.Spec
	spec.Name, _ = opts.String("--name")
	spec.Email, _ = opts.String("--email")
	spec.Role, _ = opts.String("--role")

	records, err := client.List(ctx, spec)
	if err != nil {
		return err
	}
	return printYAML(engine.SeedFile{Records: records})
}

func get(ctx context.Context, client *sdk.Client, opts docopt.Opts) error {
	id, err := recordID(opts)
	if err != nil {
		return err
	}
	record, err := client.Get(ctx, id)
	if err != nil {
		return err
	}
	return printYAML(record)
}

func create(ctx context.Context, client *sdk.Client, opts docopt.Opts) error {
	var in schema.NewRecord
	in.Name, _ = opts.String("--name")
	in.Email, _ = opts.String("--email")
	in.Role, _ = opts.String("--role")

	record, err := client.Create(ctx, in)
	if err != nil {
		return err
	}
	return printYAML(record)
}

func set(ctx context.Context, client *sdk.Client, opts docopt.Opts) error {
	id, err := recordID(opts)
	if err != nil {
		return err
	}
	field, _ := opts.String("<field>")
	value, _ := opts.String("<value>")

	record, err := client.UpdateField(ctx, id, field, value)
	if err != nil {
		return err
	}
	return printYAML(record)
}

func remove(ctx context.Context, client *sdk.Client, opts docopt.Opts) error {
	id, err := recordID(opts)
	if err != nil {
		return err
	}
	if err := client.Delete(ctx, id); err != nil {
		return err
	}
	Out.Printf("deleted record %d", id)
	return nil
}

// importSeed copies every record of a seed file into the service. The service assigns new ids.
func importSeed(ctx context.Context, client *sdk.Client, opts docopt.Opts) error {
	path, _ := opts.String("<file>")
	seed, err := engine.LoadSeed(path)
	if err != nil {
		return err
	}

	n, err := engine.Migrate(ctx, engine.NewMemStore(seed), client)
	Out.Printf("imported %d of %d records", n, len(seed))
	return err
}

func exportSeed(ctx context.Context, client *sdk.Client, opts docopt.Opts) error {
	path, _ := opts.String("<file>")
	records, err := client.List(ctx, filter.Spec{})
	if err != nil {
		return err
	}
	if err := engine.WriteSeed(path, records); err != nil {
		return err
	}
	Out.Printf("exported %d records to %s", len(records), path)
	return nil
}

func ping(ctx context.Context, client *sdk.Client) error {
	if err := client.Ping(ctx); err != nil {
		return err
	}
	Out.Print("ok")
	return nil
}
