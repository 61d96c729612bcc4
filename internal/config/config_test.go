package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Stefanbotes/GeneralSchemaQ-sub001/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	Convey("Given no file and no environment overrides", t, func() {
		os.Unsetenv("GSQ_CONFIG")

		Convey("When loading the configuration", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then the defaults should apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.QueueSize, ShouldEqual, 10_000)
				So(cfg.DedupeSize, ShouldEqual, 50_000)
				So(cfg.InstrumentForm, ShouldEqual, "full")
				So(cfg.EmergingThreshold, ShouldEqual, 60.0)
				So(cfg.StoreDriver, ShouldEqual, config.StoreMemory)
				So(cfg.StrictSubmissions, ShouldBeTrue)
				So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestLoad_Environment(t *testing.T) {
	Convey("Given environment overrides", t, func() {
		t.Setenv("GSQ_ADDR", ":7070")
		t.Setenv("GSQ_INSTRUMENT_FORM", "short")
		t.Setenv("GSQ_STORE_DRIVER", "sqlite")
		t.Setenv("GSQ_SQLITE_DSN", "override.db")

		Convey("When loading the configuration", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then the environment should win over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.InstrumentForm, ShouldEqual, "short")
				So(cfg.StoreDriver, ShouldEqual, config.StoreSQLite)
				So(cfg.SQLiteDSN, ShouldEqual, "override.db")
			})
		})
	})
}

func TestLoad_File(t *testing.T) {
	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		yaml := "addr: \":6060\"\nqueue_size: 128\nemerging_threshold: 70\n"
		So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
		t.Setenv("GSQ_CONFIG", path)

		Convey("When loading the configuration", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then file values should layer over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
				So(cfg.QueueSize, ShouldEqual, 128)
				So(cfg.EmergingThreshold, ShouldEqual, 70.0)
				So(cfg.StoreDriver, ShouldEqual, config.StoreMemory) // untouched default
			})
		})

		Convey("When the environment overrides the file", func() {
			t.Setenv("GSQ_ADDR", ":5050")
			cfg, err := config.Load(context.Background())

			Convey("Then the environment should win", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":5050")
				So(cfg.QueueSize, ShouldEqual, 128)
			})
		})

		Convey("When the file does not exist", func() {
			t.Setenv("GSQ_CONFIG", filepath.Join(dir, "missing.yaml"))
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLoad_Validation(t *testing.T) {
	Convey("Given invalid settings", t, func() {
		cases := map[string][2]string{
			"an unknown instrument form": {"GSQ_INSTRUMENT_FORM", "extended"},
			"an unknown store driver":    {"GSQ_STORE_DRIVER", "postgres"},
			"a threshold above 100":      {"GSQ_EMERGING_THRESHOLD", "150"},
			"a zero threshold":           {"GSQ_EMERGING_THRESHOLD", "0"},
		}

		for name, kv := range cases {
			Convey("When loading with "+name, func() {
				t.Setenv(kv[0], kv[1])
				_, err := config.Load(context.Background())
				So(err, ShouldNotBeNil)
			})
		}
	})
}
