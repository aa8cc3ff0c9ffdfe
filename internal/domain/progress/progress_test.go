package progress_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/rampart/internal/adapters/kv"
	"github.com/okian/rampart/internal/domain/progress"
	"github.com/okian/rampart/internal/domain/training"
	"github.com/okian/rampart/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestTracker_Get(t *testing.T) {
	Convey("Given a tracker over an empty store", t, func() {
		ctx := context.Background()
		tracker := progress.New(kv.NewMemoryStore())

		Convey("Then a new user reads as an empty record, not an error", func() {
			rec, err := tracker.Get(ctx, "u1")
			So(err, ShouldBeNil)
			So(rec, ShouldNotBeNil)
			So(len(rec), ShouldEqual, 0)
		})
	})
}

func TestTracker_Submit(t *testing.T) {
	Convey("Given a tracker", t, func() {
		ctx := context.Background()
		tracker := progress.New(kv.NewMemoryStore())

		Convey("When submitting a first score", func() {
			rec, updated, err := tracker.Submit(ctx, "u1", training.ModulePhishing, 70)

			Convey("Then the record is created and marked updated", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeTrue)
				So(rec[training.ModulePhishing], ShouldEqual, 70)
			})
		})

		Convey("When submitting a lower score than the stored best", func() {
			_, _, err := tracker.Submit(ctx, "u1", training.ModulePhishing, 70)
			So(err, ShouldBeNil)
			rec, updated, err := tracker.Submit(ctx, "u1", training.ModulePhishing, 50)

			Convey("Then nothing changes and updated is false", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeFalse)
				So(rec[training.ModulePhishing], ShouldEqual, 70)
			})
		})

		Convey("When submitting an equal score", func() {
			_, _, err := tracker.Submit(ctx, "u1", training.ModuleQuiz, 40)
			So(err, ShouldBeNil)
			_, updated, err := tracker.Submit(ctx, "u1", training.ModuleQuiz, 40)

			Convey("Then only strictly greater wins", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeFalse)
			})
		})

		Convey("When submitting two scores for the same module", func() {
			_, _, err := tracker.Submit(ctx, "u1", training.ModulePassword, 30)
			So(err, ShouldBeNil)
			rec, updated, err := tracker.Submit(ctx, "u1", training.ModulePassword, 90)

			Convey("Then the stored best is the maximum", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeTrue)
				So(rec[training.ModulePassword], ShouldEqual, 90)
			})
		})

		Convey("When submitting across distinct modules", func() {
			_, _, err := tracker.Submit(ctx, "u1", training.ModulePhishing, 70)
			So(err, ShouldBeNil)
			rec, updated, err := tracker.Submit(ctx, "u1", training.ModulePassword, 90)

			Convey("Then both bests are retained", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeTrue)
				So(rec[training.ModulePhishing], ShouldEqual, 70)
				So(rec[training.ModulePassword], ShouldEqual, 90)
				So(rec.Total(), ShouldEqual, 160)
			})
		})

		Convey("When submitting an unknown module", func() {
			_, _, err := tracker.Submit(ctx, "u1", "unknown_module", 50)

			Convey("Then the submission is rejected and no state changes", func() {
				So(errors.Is(err, training.ErrUnknownModule), ShouldBeTrue)
				rec, gerr := tracker.Get(ctx, "u1")
				So(gerr, ShouldBeNil)
				So(len(rec), ShouldEqual, 0)
			})
		})

		Convey("When submitting an out-of-range score", func() {
			_, _, err := tracker.Submit(ctx, "u1", training.ModulePhishing, 150)
			So(errors.Is(err, training.ErrScoreOutOfRange), ShouldBeTrue)

			_, _, err = tracker.Submit(ctx, "u1", training.ModulePhishing, -1)
			So(errors.Is(err, training.ErrScoreOutOfRange), ShouldBeTrue)
		})
	})
}

// conflictOnce wraps a store and forces the first CompareAndSwap to conflict,
// simulating a concurrent writer.
type conflictOnce struct {
	kv.Store
	fired bool
}

func (c *conflictOnce) CompareAndSwap(ctx context.Context, key string, data []byte, version int64) error {
	if !c.fired {
		c.fired = true
		return kv.ErrConflict
	}
	return c.Store.CompareAndSwap(ctx, key, data, version)
}

func TestTracker_SubmitRetriesOnConflict(t *testing.T) {
	Convey("Given a store that conflicts once", t, func() {
		ctx := context.Background()
		store := &conflictOnce{Store: kv.NewMemoryStore()}
		tracker := progress.New(store, progress.WithRetries(3))

		Convey("When submitting a score", func() {
			rec, updated, err := tracker.Submit(ctx, "u1", training.ModuleInjection, 80)

			Convey("Then the retry absorbs the conflict", func() {
				So(err, ShouldBeNil)
				So(updated, ShouldBeTrue)
				So(rec[training.ModuleInjection], ShouldEqual, 80)
			})
		})
	})
}

// alwaysConflict refuses every conditional write.
type alwaysConflict struct {
	kv.Store
}

func (alwaysConflict) CompareAndSwap(context.Context, string, []byte, int64) error {
	return kv.ErrConflict
}

func TestTracker_SubmitSurfacesExhaustedConflict(t *testing.T) {
	Convey("Given a store that always conflicts", t, func() {
		ctx := context.Background()
		tracker := progress.New(
			alwaysConflict{Store: kv.NewMemoryStore()},
			progress.WithRetries(2),
		)

		Convey("When submitting a score", func() {
			_, _, err := tracker.Submit(ctx, "u1", training.ModuleQuiz, 10)

			Convey("Then the conflict surfaces after bounded retries", func() {
				So(errors.Is(err, kv.ErrConflict), ShouldBeTrue)
			})
		})
	})
}
