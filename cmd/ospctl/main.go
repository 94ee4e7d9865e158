// Command ospctl drives a receiver over OSP: init/factory reset, seed
// position aiding, almanac/ephemeris upload and download, then reports
// navigation fixes until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"ospdriver/osp"
)

type options struct {
	device    string
	ephFile   string
	almFile   string
	verbose   int
	factory   bool
	force     bool
	download  bool
	upload    bool
	seedGiven bool
	lat, lon  int32
	alt       int32
	drift     uint32
}

func parseArgs(args []string) (*options, error) {
	fs := pflag.NewFlagSet("ospctl", pflag.ContinueOnError)
	opt := &options{}
	var position string

	fs.StringVarP(&opt.device, "device", "s", "/dev/ttyUSB0", "serial device to be used")
	fs.StringVarP(&opt.ephFile, "ephemeris", "e", "eph.bin", "ephemeris data file")
	fs.StringVarP(&opt.almFile, "almanac", "a", "almanac.bin", "almanac data file")
	fs.CountVarP(&opt.verbose, "verbose", "v", "verbose output (repeatable)")
	fs.BoolVarP(&opt.factory, "factory", "r", false, "perform factory reset")
	fs.BoolVarP(&opt.force, "force", "f", false, "switch from NMEA to OSP protocol")
	fs.StringVarP(&position, "position", "p", "", "seed position LAT,LON,ALT")
	fs.Uint32VarP(&opt.drift, "drift", "d", 0, "gps clock drift")
	fs.BoolVarP(&opt.download, "download", "l", false, "download almanac and ephemeris on exit")
	fs.BoolVarP(&opt.upload, "upload", "u", false, "upload almanac and ephemeris on start")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if position != "" {
		parts := strings.Split(position, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("--position wants LAT,LON,ALT, got %q", position)
		}
		lat, err := strconv.ParseInt(parts[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("--position latitude: %w", err)
		}
		lon, err := strconv.ParseInt(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("--position longitude: %w", err)
		}
		alt, err := strconv.ParseInt(parts[2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("--position altitude: %w", err)
		}
		opt.seedGiven = true
		opt.lat, opt.lon, opt.alt = int32(lat), int32(lon), int32(alt)
	}
	return opt, nil
}

func main() {
	opt, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	osp.SetTraceLevel(opt.verbose)

	if opt.force {
		if err := ForceOSP(opt.device); err != nil {
			fmt.Fprintf(os.Stderr, "ospctl: force: %v\n", err)
			os.Exit(1)
		}
	}

	transport, err := OpenSerialTransport(opt.device, 115200)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ospctl: %v\n", err)
		os.Exit(1)
	}
	defer transport.Close()

	callbacks := osp.Callbacks{
		Location: func(svsInFix uint8, latE7, lonE7 int32, unixTime int64) {
			fmt.Printf("fix: svs=%d lat=%d lon=%d time=%s\n",
				svsInFix, latE7, lonE7, time.Unix(unixTime, 0).UTC().Format(time.RFC3339))
		},
	}
	engine := osp.New(transport, callbacks, osp.SystemClock{})
	transport.Attach(engine)
	go transport.Run()

	if err := engine.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "ospctl: start: %v\n", err)
		os.Exit(1)
	}
	time.Sleep(100 * time.Millisecond)

	if opt.factory {
		if reopened, err := runFactoryReset(engine, transport, opt); err != nil {
			fmt.Fprintf(os.Stderr, "ospctl: factory reset: %v\n", err)
		} else {
			transport = reopened
			defer transport.Close()
		}
	}

	var seed *osp.PositionSeed
	if opt.seedGiven {
		seed = &osp.PositionSeed{LatE7: opt.lat, LonE7: opt.lon, AltCM: opt.alt}
	}
	if err := engine.Init(true, seed, int32(opt.drift)); err != nil {
		fmt.Fprintf(os.Stderr, "ospctl: init: %v\n", err)
	}

	time.Sleep(500 * time.Millisecond)

	if opt.upload {
		if almanac, err := loadPersistedAlmanac(opt.almFile); err != nil {
			fmt.Fprintf(os.Stderr, "ospctl: load almanac: %v\n", err)
		} else if err := engine.AlmanacSet(almanac); err != nil {
			fmt.Fprintf(os.Stderr, "ospctl: almanac set: %v\n", err)
		}
		if records, err := loadPersistedEphemeris(opt.ephFile); err != nil {
			fmt.Fprintf(os.Stderr, "ospctl: load ephemeris: %v\n", err)
		} else {
			for _, rec := range records {
				if err := engine.EphemerisSet(rec); err != nil {
					fmt.Fprintf(os.Stderr, "ospctl: ephemeris set: %v\n", err)
				}
			}
		}
	}

	terminate := make(chan os.Signal, 1)
	signal.Notify(terminate, os.Interrupt, syscall.SIGTERM)
	<-terminate

	if opt.download {
		if almanac, err := engine.AlmanacPoll(); err != nil {
			fmt.Fprintf(os.Stderr, "ospctl: almanac poll: %v\n", err)
		} else if err := savePersistedAlmanac(opt.almFile, almanac); err != nil {
			fmt.Fprintf(os.Stderr, "ospctl: save almanac: %v\n", err)
		}
		if records, err := engine.EphemerisPoll(0); err != nil {
			fmt.Fprintf(os.Stderr, "ospctl: ephemeris poll: %v\n", err)
		} else if err := savePersistedEphemeris(opt.ephFile, records); err != nil {
			fmt.Fprintf(os.Stderr, "ospctl: save ephemeris: %v\n", err)
		}
	}

	engine.Stop()
}

// runFactoryReset resets the receiver, which drops back to NMEA mode, so
// the transport must be closed, the device re-forced into OSP, and a fresh
// transport opened and reattached to the same engine.
func runFactoryReset(engine *osp.Engine, transport *SerialTransport, opt *options) (*SerialTransport, error) {
	err := engine.Factory(false, false)
	fmt.Printf("osp_factory: %s\n", resultLabel(err))
	time.Sleep(1 * time.Second)
	engine.Stop()
	transport.Close()

	if err := ForceOSP(opt.device); err != nil {
		return nil, fmt.Errorf("re-force: %w", err)
	}
	newTransport, err := OpenSerialTransport(opt.device, 115200)
	if err != nil {
		return nil, fmt.Errorf("reopen: %w", err)
	}
	newTransport.Attach(engine)
	go newTransport.Run()
	engine.Start()
	return newTransport, nil
}

func resultLabel(err error) string {
	if err != nil {
		return "FAIL"
	}
	return "SUCCESS"
}
