package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/ratefit/internal/cli"
	"github.com/okian/ratefit/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func execute(ctx context.Context, args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	root := cli.Root()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func TestGenerateAndEstimate(t *testing.T) {
	Convey("Given an empty working directory", t, func() {
		dir := t.TempDir()
		t.Chdir(dir)
		t.Setenv(config.EnvConfigPath, "")
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		input := filepath.Join(dir, "history", "contests.json")
		out, _, err := execute(ctx, "generate", input, "--seed", "7", "--contestants", "150")
		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "wrote 12 contests")

		Convey("When estimating into a JSON store", func() {
			store := filepath.Join(dir, "models", "problem-models.json")
			out, _, err := execute(ctx, "estimate", input, "--store-path", store, "-w", "2")
			So(err, ShouldBeNil)

			Convey("Then a report is printed and models are written", func() {
				So(out, ShouldContainSubstring, "contests:    12")
				raw, err := os.ReadFile(store)
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, `"irt_users"`)
			})
		})

		Convey("When estimating into SQLite from a config file", func() {
			cfgPath := filepath.Join(dir, "ratefit.yaml")
			yaml := "input: " + input + "\n" +
				"store_driver: sqlite\n" +
				"store_path: " + filepath.Join(dir, "models.db") + "\n" +
				"log_format: json\n"
			So(os.WriteFile(cfgPath, []byte(yaml), 0o600), ShouldBeNil)

			out, logs, err := execute(ctx, "estimate", "--config", cfgPath)
			So(err, ShouldBeNil)

			Convey("Then the config drives the run", func() {
				So(out, ShouldContainSubstring, "run ")
				So(logs, ShouldContainSubstring, `"msg":"estimation finished"`)
				_, err := os.Stat(filepath.Join(dir, "models.db"))
				So(err, ShouldBeNil)
			})
		})

		Convey("When the input is missing", func() {
			_, _, err := execute(ctx, "estimate", filepath.Join(dir, "nope.json"),
				"--store-path", filepath.Join(dir, "m.json"))

			Convey("Then the command fails", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the store driver is unknown", func() {
			_, _, err := execute(ctx, "estimate", input, "--store-driver", "mongo")

			Convey("Then validation rejects it", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestRoot(t *testing.T) {
	Convey("Given the root command", t, func() {
		root := cli.Root()

		Convey("Then every subcommand is registered", func() {
			var names []string
			for _, c := range root.Commands() {
				names = append(names, c.Name())
			}
			So(names, ShouldContain, "estimate")
			So(names, ShouldContain, "serve")
			So(names, ShouldContain, "generate")
		})

		Convey("Then stray arguments are refused", func() {
			_, _, err := execute(context.Background(), "extra")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "extra")
		})

		Convey("Then a bare invocation prints help", func() {
			out, _, err := execute(context.Background())
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Available Commands")
		})
	})
}
