package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/arnavshah/carpool-scheduler-api/pkg/config"
	"github.com/arnavshah/carpool-scheduler-api/pkg/export"
	"github.com/arnavshah/carpool-scheduler-api/pkg/loader"
	"github.com/arnavshah/carpool-scheduler-api/pkg/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	file := flag.String("f", "members.json", "JSON roster of riders and drivers")
	days := flag.String("days", "", "comma separated days to schedule (default CARPOOL_DAYS)")
	seed := flag.Int64("seed", cfg.Seed, "shuffle seed, 0 for random")
	duesOnly := flag.Bool("dues-only", cfg.DuesOnly, "only schedule riders who paid dues")
	csvOut := flag.String("csv", "", "also write the schedule as CSV to this file")
	verbose := flag.Bool("v", false, "log seat counts and unmatched riders")
	flag.Parse()

	if *days != "" {
		cfg.Days, err = config.ParseDayList(*days)
		if err != nil {
			log.Fatalf("bad -days: %v", err)
		}
	}

	riders, drivers, err := loader.ReadJSONFile(*file)
	if err != nil {
		log.Fatal(err)
	}
	if err := loader.NewValidator(nil).Validate(riders, drivers); err != nil {
		log.Fatalf("invalid roster:\n%v", err)
	}

	var opts []scheduler.Option
	if *seed != 0 {
		opts = append(opts, scheduler.WithSeed(*seed))
	}
	if *verbose {
		opts = append(opts, scheduler.WithLogger(log.Default()))
	}

	riderRefs := scheduler.Refs(riders)
	if *duesOnly {
		riderRefs = scheduler.FilterDuesPayers(riderRefs)
	}

	schedule, err := scheduler.NewScheduler(opts...).GenerateSchedule(riderRefs, scheduler.Refs(drivers), cfg.Days)
	if err != nil {
		log.Fatal(err)
	}

	if err := export.Summary(os.Stdout, schedule); err != nil {
		log.Fatal(err)
	}

	if *csvOut != "" {
		f, err := os.Create(*csvOut)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := export.WriteCSV(f, schedule); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Wrote %s\n", *csvOut)
	}
}
