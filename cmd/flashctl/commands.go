package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/viant/afs"

	"github.com/outofforest/flashstore"
	"github.com/outofforest/flashstore/color"
	"github.com/outofforest/flashstore/config"
	"github.com/outofforest/flashstore/persistence"
	"github.com/outofforest/flashstore/pkg/filedev"
	"github.com/outofforest/flashstore/snapshot"
)

const (
	msgNoSpace     = "no space for a new color"
	msgNoColor     = "no such color"
	msgInvalidName = "invalid color name"
)

// defaultColor is the color used before anything is saved.
var defaultColor = color.HSV{H: 247, S: 255, V: 255}

type device interface {
	persistence.Dev
	io.Closer
}

// openDevice opens the flash image.
var openDevice = func(path string, geometry persistence.Geometry) (device, error) {
	dev, err := filedev.Open(path, geometry.Base, geometry.PageSize, geometry.Pages)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

type env struct {
	cfg   config.Config
	dev   device
	store *flashstore.Store
	out   io.Writer
}

type command struct {
	nArgs int
	flags func(fs *flag.FlagSet)
	fn    func(ctx context.Context, e *env, args []string) error
}

func run(ctx context.Context, args []string, out io.Writer) (retErr error) {
	if len(args) == 0 {
		return errors.WithStack(errUsage)
	}
	if args[0] == "help" {
		usage(out)
		return nil
	}

	var force bool
	var page uint
	commands := map[string]command{
		"init": {
			flags: func(fs *flag.FlagSet) {
				fs.BoolVar(&force, "force", false, "format all the pages destroying existing records")
			},
			fn: func(_ context.Context, e *env, _ []string) error {
				return initCmd(e, force)
			},
		},
		"hsv":             {nArgs: 3, fn: hsvCmd},
		"rgb":             {nArgs: 3, fn: rgbCmd},
		"show":            {fn: showCmd},
		"rgb-add":         {nArgs: 4, fn: rgbAddCmd},
		"rgb-add-current": {nArgs: 1, fn: rgbAddCurrentCmd},
		"rgb-apply":       {nArgs: 1, fn: rgbApplyCmd},
		"rgb-del":         {nArgs: 1, fn: rgbDelCmd},
		"list":            {fn: listCmd},
		"count":           {fn: countCmd},
		"records": {
			flags: func(fs *flag.FlagSet) {
				fs.UintVar(&page, "page", uint(persistence.PresetsPage), "page index")
			},
			fn: func(_ context.Context, e *env, _ []string) error {
				return recordsCmd(e, persistence.PageIndex(page))
			},
		},
		"export": {nArgs: 1, fn: exportCmd},
		"import": {nArgs: 1, fn: importCmd},
	}

	cmd, exists := commands[args[0]]
	if !exists {
		return errors.Wrapf(errUsage, "unknown command %q", args[0])
	}

	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configPath := flags.String("config", "", "YAML config path")
	image := flags.String("image", "", "flash image path, overrides config")
	if cmd.flags != nil {
		cmd.flags(flags)
	}
	if err := flags.Parse(args[1:]); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	if flags.NArg() != cmd.nArgs {
		return errors.Wrapf(errUsage, "command %q requires %d arguments", args[0], cmd.nArgs)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *image != "" {
		cfg.Image = *image
	}
	if cfg.Gops {
		startGops()
	}

	e, err := openEnv(cfg, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.dev.Close(); err != nil && retErr == nil {
			retErr = errors.Wrapf(err, "closing image %s failed", cfg.Image)
		}
	}()

	if args[0] != "init" {
		if err := e.store.Init(false); err != nil {
			return err
		}
	}
	return cmd.fn(ctx, e, flags.Args())
}

func openEnv(cfg config.Config, out io.Writer) (*env, error) {
	geometry := cfg.Geometry.Persistence()
	dev, err := openDevice(cfg.Image, geometry)
	if err != nil {
		return nil, err
	}
	store, err := flashstore.New(dev, geometry, cfg.Poll.Waiter())
	if err != nil {
		_ = dev.Close()
		return nil, err
	}
	return &env{
		cfg:   cfg,
		dev:   dev,
		store: store,
		out:   out,
	}, nil
}

func initCmd(e *env, force bool) error {
	return e.store.Init(force)
}

func hsvCmd(_ context.Context, e *env, args []string) error {
	components, err := parseComponents(args)
	if err != nil {
		return err
	}
	return e.store.SaveSettings(color.HSV{H: components[0], S: components[1], V: components[2]})
}

func rgbCmd(_ context.Context, e *env, args []string) error {
	components, err := parseComponents(args)
	if err != nil {
		return err
	}
	return e.store.SaveSettings(color.RGB{R: components[0], G: components[1], B: components[2]}.HSV())
}

func showCmd(_ context.Context, e *env, _ []string) error {
	c := defaultColor
	if err := e.store.LoadSettings(&c); err != nil {
		return err
	}
	rgb := c.RGB()
	fmt.Fprintf(e.out, "hsv %d %d %d\nrgb %d %d %d\n", c.H, c.S, c.V, rgb.R, rgb.G, rgb.B)
	return nil
}

func rgbAddCmd(_ context.Context, e *env, args []string) error {
	components, err := parseComponents(args[:3])
	if err != nil {
		return err
	}
	return savePreset(e, color.RGB{R: components[0], G: components[1], B: components[2]}, args[3])
}

func rgbAddCurrentCmd(_ context.Context, e *env, args []string) error {
	c := defaultColor
	if err := e.store.LoadSettings(&c); err != nil {
		return err
	}
	return savePreset(e, c.RGB(), args[0])
}

func savePreset(e *env, c color.RGB, name string) error {
	ok, err := e.store.HasPresetCapacity(e.cfg.Presets.Limit())
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(e.out, msgNoSpace)
		return nil
	}

	err = e.store.SavePreset(c, name)
	switch {
	case errors.Is(err, flashstore.ErrBeyondPage):
		fmt.Fprintln(e.out, msgNoSpace)
		return nil
	case errors.Is(err, flashstore.ErrInvalidName):
		fmt.Fprintln(e.out, msgInvalidName)
		return nil
	}
	return err
}

func rgbApplyCmd(_ context.Context, e *env, args []string) error {
	hsv, err := e.store.ApplyPreset(args[0])
	switch {
	case errors.Is(err, flashstore.ErrNotFound):
		fmt.Fprintln(e.out, msgNoColor)
		return nil
	case errors.Is(err, flashstore.ErrInvalidName):
		fmt.Fprintln(e.out, msgInvalidName)
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(e.out, "hsv %d %d %d\n", hsv.H, hsv.S, hsv.V)
	return nil
}

func rgbDelCmd(_ context.Context, e *env, args []string) error {
	err := e.store.DeletePreset(args[0])
	switch {
	case errors.Is(err, flashstore.ErrNotFound):
		fmt.Fprintln(e.out, msgNoColor)
		return nil
	case errors.Is(err, flashstore.ErrInvalidName):
		fmt.Fprintln(e.out, msgInvalidName)
		return nil
	}
	return err
}

func listCmd(_ context.Context, e *env, _ []string) error {
	presets, err := e.store.Presets()
	if err != nil {
		return err
	}
	for _, p := range presets {
		fmt.Fprintf(e.out, "%s %d %d %d\n", p.Name, p.Color.R, p.Color.G, p.Color.B)
	}
	return nil
}

func countCmd(_ context.Context, e *env, _ []string) error {
	count, err := e.store.CountPresets()
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%d/%d\n", count, e.cfg.Presets.Limit())
	return nil
}

func recordsCmd(e *env, page persistence.PageIndex) error {
	rs, err := e.store.Records(page)
	if err != nil {
		return err
	}
	for _, r := range rs {
		fmt.Fprintf(e.out, "0x%06x type=%d state=0x%02x length=%d\n", r.Address, r.Header.Type, r.Header.State, r.Header.Length)
	}
	return nil
}

func exportCmd(ctx context.Context, e *env, args []string) error {
	return snapshot.Export(ctx, afs.New(), e.store.Persistence(), args[0])
}

func importCmd(ctx context.Context, e *env, args []string) error {
	return snapshot.Import(ctx, afs.New(), e.store.Persistence(), args[0])
}

func parseComponents(args []string) ([3]uint8, error) {
	var components [3]uint8
	for i, arg := range args {
		v, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return components, errors.Wrapf(errUsage, "invalid color component %q", arg)
		}
		components[i] = uint8(v)
	}
	return components, nil
}
