package cli

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/config"
	"github.com/roach88/sift/internal/logger"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// testRoot returns root options with config and logger preset, so
// commands built from it never read the environment.
func testRoot(format, dialect string) *RootOptions {
	cfg := config.Config{
		ServiceName: "sift",
		Environment: config.TestMode,
		Driver:      config.DriverSQLite,
		PageSize:    20,
		MaxRows:     1000,
		ParseLimit:  64,
	}
	return &RootOptions{
		Format:    format,
		Dialect:   dialect,
		Config:    &cfg,
		Log:       logger.NewNop(),
		RequestID: "req-test",
	}
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
