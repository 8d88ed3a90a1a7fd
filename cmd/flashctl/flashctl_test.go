package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/flashstore/persistence"
	"github.com/outofforest/flashstore/presetstore"
)

type cli struct {
	t      *testing.T
	config string
}

func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	config := filepath.Join(dir, "flashctl.yaml")
	require.NoError(t, os.WriteFile(config, []byte(fmt.Sprintf(`
image: %s
presets:
  capacity: 3
`, filepath.Join(dir, "flash.img"))), 0o600))
	return &cli{t: t, config: config}
}

func (c *cli) run(args ...string) string {
	out := &bytes.Buffer{}
	args = append([]string{args[0], "-config", c.config}, args[1:]...)
	require.NoError(c.t, run(context.Background(), args, out))
	return out.String()
}

func TestShowDefault(t *testing.T) {
	c := newCLI(t)

	require.Equal(t, "hsv 247 255 255\n", firstLine(c.run("show")))
}

func TestSettings(t *testing.T) {
	requireT := require.New(t)
	c := newCLI(t)

	c.run("hsv", "10", "20", "30")
	c.run("hsv", "40", "50", "60")
	requireT.Equal("hsv 40 50 60\n", firstLine(c.run("show")))

	c.run("init")
	requireT.Equal("hsv 40 50 60\n", firstLine(c.run("show")))

	c.run("init", "-force")
	requireT.Equal("hsv 247 255 255\n", firstLine(c.run("show")))
}

func TestRGB(t *testing.T) {
	requireT := require.New(t)
	c := newCLI(t)

	requireT.Empty(c.run("rgb", "0", "255", "0"))
	requireT.Equal("hsv 85 255 255\n", firstLine(c.run("show")))

	requireT.ErrorIs(run(context.Background(), []string{"rgb", "-config", c.config, "0", "256", "0"}, &bytes.Buffer{}),
		errUsage)
	requireT.Equal("hsv 85 255 255\n", firstLine(c.run("show")))
}

func TestPresets(t *testing.T) {
	requireT := require.New(t)
	c := newCLI(t)

	requireT.Empty(c.run("rgb-add", "0", "255", "0", "green"))
	requireT.Equal("green 0 255 0\n", c.run("list"))

	requireT.Equal("hsv 85 255 255\n", c.run("rgb-apply", "green"))
	requireT.Equal("hsv 85 255 255\n", firstLine(c.run("show")))

	requireT.Equal(msgNoColor+"\n", c.run("rgb-apply", "red"))
	requireT.Equal(msgNoColor+"\n", c.run("rgb-del", "red"))

	requireT.Empty(c.run("rgb-del", "green"))
	requireT.Empty(c.run("list"))
	requireT.Equal("1/3\n", c.run("count"))
}

func TestCapacity(t *testing.T) {
	requireT := require.New(t)
	c := newCLI(t)

	c.run("rgb-add", "1", "0", "0", "a")
	c.run("rgb-add", "2", "0", "0", "b")
	c.run("rgb-add-current", "c")
	requireT.Equal(msgNoSpace+"\n", c.run("rgb-add", "4", "0", "0", "d"))
	requireT.Equal("3/3\n", c.run("count"))

	out := c.run("records")
	requireT.Len(strings.Split(strings.TrimSpace(out), "\n"), 4)
}

func TestInvalidName(t *testing.T) {
	requireT := require.New(t)
	c := newCLI(t)

	name := strings.Repeat("a", presetstore.MaxNameLength+1)
	requireT.Equal(msgInvalidName+"\n", c.run("rgb-add", "1", "2", "3", name))
	requireT.Equal(msgInvalidName+"\n", c.run("rgb-add-current", name))
	requireT.Equal(msgInvalidName+"\n", c.run("rgb-apply", name))
	requireT.Equal(msgInvalidName+"\n", c.run("rgb-del", name))
	requireT.Equal("0/3\n", c.run("count"))
}

var errCloseFailed = errors.New("close failed")

type closeFailingDev struct {
	device
}

func (d closeFailingDev) Close() error {
	if err := d.device.Close(); err != nil {
		return err
	}
	return errCloseFailed
}

func TestCloseErrorIsReturned(t *testing.T) {
	requireT := require.New(t)
	c := newCLI(t)

	c.run("hsv", "1", "2", "3")

	open := openDevice
	t.Cleanup(func() {
		openDevice = open
	})
	openDevice = func(path string, geometry persistence.Geometry) (device, error) {
		dev, err := open(path, geometry)
		if err != nil {
			return nil, err
		}
		return closeFailingDev{device: dev}, nil
	}

	err := run(context.Background(), []string{"hsv", "-config", c.config, "4", "5", "6"}, &bytes.Buffer{})
	requireT.ErrorIs(err, errCloseFailed)
}

func TestExportImport(t *testing.T) {
	requireT := require.New(t)
	c := newCLI(t)
	URL := "file://" + filepath.Join(t.TempDir(), "flash.snap")

	c.run("hsv", "1", "2", "3")
	c.run("export", URL)

	c.run("init", "-force")
	requireT.Equal("hsv 247 255 255\n", firstLine(c.run("show")))

	c.run("import", URL)
	requireT.Equal("hsv 1 2 3\n", firstLine(c.run("show")))
}

func TestUsage(t *testing.T) {
	requireT := require.New(t)
	c := newCLI(t)

	requireT.ErrorIs(run(context.Background(), nil, &bytes.Buffer{}), errUsage)
	requireT.ErrorIs(run(context.Background(), []string{"unknown"}, &bytes.Buffer{}), errUsage)
	requireT.ErrorIs(run(context.Background(), []string{"hsv", "-config", c.config, "1", "2"}, &bytes.Buffer{}), errUsage)
	requireT.ErrorIs(run(context.Background(), []string{"hsv", "-config", c.config, "1", "2", "256"}, &bytes.Buffer{}),
		errUsage)

	out := &bytes.Buffer{}
	requireT.NoError(run(context.Background(), []string{"help"}, out))
	requireT.Contains(out.String(), "Usage: flashctl")
}

func firstLine(s string) string {
	return s[:strings.IndexByte(s, '\n')+1]
}
