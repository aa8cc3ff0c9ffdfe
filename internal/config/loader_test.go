package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/rampart/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RAMPART_CONFIG", "RAMPART_ADDR", "RAMPART_LOG_LEVEL", "RAMPART_TOP_N",
		"RAMPART_STORAGE", "RAMPART_SQLITE_PATH", "RAMPART_AUTH_SECRET",
		"RAMPART_SUBMIT_RETRIES",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAMPART_AUTH_SECRET", "test-secret")

	Convey("Given only the required secret in the environment", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.TopN, ShouldEqual, 50)
			So(cfg.SubmitRetries, ShouldEqual, 3)
			So(cfg.Storage, ShouldEqual, config.StorageMemory)
		})
	})
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAMPART_AUTH_SECRET", "test-secret")
	t.Setenv("RAMPART_ADDR", ":7070")
	t.Setenv("RAMPART_TOP_N", "10")
	t.Setenv("RAMPART_LOG_LEVEL", "debug")

	Convey("Given env overrides", t, func() {
		cfg, err := config.Load(context.Background())

		Convey("Then the env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.TopN, ShouldEqual, 10)
			So(cfg.LogLevel, ShouldEqual, "debug")
		})
	})
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("RAMPART_AUTH_SECRET", "test-secret")

	Convey("Given a YAML config file", t, func() {
		path := filepath.Join(t.TempDir(), "rampart.yaml")
		So(os.WriteFile(path, []byte("addr: \":6060\"\ntop_n: 25\n"), 0o600), ShouldBeNil)
		t.Setenv("RAMPART_CONFIG", path)

		cfg, err := config.Load(context.Background())

		Convey("Then file values apply under env precedence", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.TopN, ShouldEqual, 25)
		})
	})
}

func TestLoad_Validation(t *testing.T) {
	Convey("Given invalid settings", t, func() {
		Convey("Then a missing secret is rejected", func() {
			clearEnv(t)
			_, err := config.Load(context.Background())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("Then an unknown storage backend is rejected", func() {
			clearEnv(t)
			t.Setenv("RAMPART_AUTH_SECRET", "s")
			t.Setenv("RAMPART_STORAGE", "redis")
			_, err := config.Load(context.Background())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("Then a non-positive top_n is rejected", func() {
			clearEnv(t)
			t.Setenv("RAMPART_AUTH_SECRET", "s")
			t.Setenv("RAMPART_TOP_N", "0")
			_, err := config.Load(context.Background())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("Then a missing file path errors as a load failure", func() {
			clearEnv(t)
			t.Setenv("RAMPART_AUTH_SECRET", "s")
			t.Setenv("RAMPART_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
			_, err := config.Load(context.Background())
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}

func TestNew_Defaults(t *testing.T) {
	Convey("Given New", t, func() {
		cfg := config.New(context.Background())

		Convey("Then defaults are sensible", func() {
			So(cfg.TopN, ShouldEqual, 50)
			So(cfg.Storage, ShouldEqual, config.StorageMemory)
			So(cfg.SQLitePath, ShouldEqual, "rampart.db")
		})
	})
}
