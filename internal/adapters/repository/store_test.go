package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/ratefit/internal/adapters/repository"
	"github.com/okian/ratefit/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleModels() model.Models {
	return model.Models{
		"abc100_a": {
			Slope:            model.Float(-0.001),
			Intercept:        model.Float(8),
			Variance:         model.Float(0.3),
			Difficulty:       model.Float(-400),
			Discrimination:   model.Float(0.0044),
			IRTLogLikelihood: model.Float(-120.5),
			IRTUsers:         model.Int(300),
		},
		"abc100_d": {
			IRTLogLikelihood: model.Float(-20.7),
			IRTUsers:         model.Int(30),
			IsExperimental:   true,
		},
	}
}

// exerciseStore runs the contract every ModelStore must satisfy.
func exerciseStore(ctx context.Context, store repository.ModelStore) {
	n, err := store.Merge(ctx, sampleModels())
	So(err, ShouldBeNil)
	So(n, ShouldEqual, 2)

	Convey("Then models read back with absent sub-models left nil", func() {
		m, err := store.Get(ctx, "abc100_d")
		So(err, ShouldBeNil)
		So(m.Difficulty, ShouldBeNil)
		So(m.Slope, ShouldBeNil)
		So(*m.IRTUsers, ShouldEqual, 30)
		So(m.IsExperimental, ShouldBeTrue)

		m, err = store.Get(ctx, "abc100_a")
		So(err, ShouldBeNil)
		So(*m.Difficulty, ShouldEqual, -400)
		So(*m.Slope, ShouldEqual, -0.001)
	})

	Convey("When merging a partial update", func() {
		_, err := store.Merge(ctx, model.Models{
			"abc100_a": {IRTLogLikelihood: model.Float(-1), IRTUsers: model.Int(1)},
			"abc101_a": {IRTLogLikelihood: model.Float(-2), IRTUsers: model.Int(2)},
		})
		So(err, ShouldBeNil)

		Convey("Then merged problems are replaced and others kept", func() {
			all, err := store.Load(ctx)
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 3)
			So(all["abc100_a"].Difficulty, ShouldBeNil)
			So(*all["abc100_d"].IRTUsers, ShouldEqual, 30)
			count, err := store.Count(ctx)
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 3)
		})
	})

	Convey("Then unknown problems are not found", func() {
		_, err := store.Get(ctx, "nope")
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
	})
}

func TestJSONStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a JSON store in a temp dir", t, func() {
		path := filepath.Join(t.TempDir(), "out", "problem-models.json")
		store, err := repository.NewJSONStore(path)
		So(err, ShouldBeNil)
		defer store.Close()

		exerciseStore(ctx, store)

		Convey("Then the document is reopened intact", func() {
			again, err := repository.NewJSONStore(path)
			So(err, ShouldBeNil)
			n, err := again.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldBeGreaterThanOrEqualTo, 2)

			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"irt_loglikelihood"`)
		})
	})

	Convey("Given a corrupt document", t, func() {
		path := filepath.Join(t.TempDir(), "bad.json")
		So(os.WriteFile(path, []byte("{"), 0o600), ShouldBeNil)

		Convey("Then opening fails", func() {
			_, err := repository.NewJSONStore(path)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a closed store", t, func() {
		store, err := repository.NewJSONStore(filepath.Join(t.TempDir(), "m.json"))
		So(err, ShouldBeNil)
		So(store.Close(), ShouldBeNil)

		Convey("Then operations fail", func() {
			_, err := store.Merge(ctx, sampleModels())
			So(errors.Is(err, repository.ErrStoreClosed), ShouldBeTrue)
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a SQLite store on a temp file", t, func() {
		store, err := repository.Open(ctx, repository.DriverSQLite, filepath.Join(t.TempDir(), "models.db"), "")
		So(err, ShouldBeNil)
		defer store.Close()

		exerciseStore(ctx, store)
	})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("RATEFIT_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("RATEFIT_TEST_PG_DSN not set")
	}
	ctx := context.Background()

	Convey("Given a Postgres store", t, func() {
		store, err := repository.NewPostgresStore(ctx, dsn)
		So(err, ShouldBeNil)
		defer store.Close()

		exerciseStore(ctx, store)
	})
}

func TestOpen(t *testing.T) {
	Convey("Unknown drivers are refused", t, func() {
		_, err := repository.Open(context.Background(), "mongo", "", "")
		So(errors.Is(err, repository.ErrUnknownDriver), ShouldBeTrue)
	})
}
