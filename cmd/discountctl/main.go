// Command discountctl runs discount code operations against the configured
// database, for cron hosts that prefer a process over the in-server scheduler.
//
//	discountctl refresh               create or extend the campaign code
//	discountctl expire                archive codes past their window
//	discountctl list [-archived]      print codes
//	discountctl check CODE [PRODUCT]  report whether CODE can be redeemed
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/MrKriegler/go-warranty/internal/platform/config"
	"github.com/MrKriegler/go-warranty/internal/platform/logging"
	"github.com/MrKriegler/go-warranty/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.MustLoad()
	log := logging.New(cfg.Env, cfg.LogLevel).With("operator", os.Getenv("USER"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, log, os.Args[1], os.Args[2:]); err != nil {
		log.Error("discountctl failed", "cmd", os.Args[1], "err", err)
		cancel()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: discountctl refresh | expire | list [-archived] | check CODE [PRODUCT]")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, cmd string, args []string) error {
	stores, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close(context.Background())

	svc, err := core.NewDiscountService(stores.Discounts, core.CampaignSettings{
		Code:               cfg.Campaign.Code,
		Type:               core.DiscountType(cfg.Campaign.Type),
		Value:              cfg.Campaign.Value,
		ValidityDays:       cfg.Campaign.ValidityDays,
		ApplicableProducts: cfg.Campaign.Products,
	})
	if err != nil {
		return err
	}

	switch cmd {
	case "refresh":
		d, err := svc.RefreshCampaign(ctx)
		if err != nil {
			return err
		}
		log.Info("campaign code refreshed", "code", d.Code, "valid_to", d.ValidTo)
		return printJSON(d)

	case "expire":
		n, err := svc.ExpireCodes(ctx)
		if err != nil {
			return err
		}
		log.Info("expiry sweep done", "archived", n)
		return printJSON(map[string]int64{"archived": n})

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		archived := fs.Bool("archived", false, "include archived codes")
		if err := fs.Parse(args); err != nil {
			return err
		}
		codes, err := svc.List(ctx, *archived)
		if err != nil {
			return err
		}
		return printJSON(codes)

	case "check":
		if len(args) == 0 {
			return errors.New("check needs a code")
		}
		product := ""
		if len(args) > 1 {
			product = args[1]
		}
		d, err := svc.CheckRedeemable(ctx, args[0], product)
		if errors.Is(err, core.ErrInvalidState) {
			fmt.Printf("%s: not redeemable: %v\n", d.Code, err)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s: redeemable until %s\n", d.Code, d.ValidTo.Format(time.RFC3339))
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
