package model_test

import (
	"testing"

	"github.com/okian/rampart/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecordTotal(t *testing.T) {
	Convey("Given progress records", t, func() {
		Convey("Then an empty record totals zero", func() {
			So(model.Record{}.Total(), ShouldEqual, 0)
		})

		Convey("Then totals sum across modules regardless of order", func() {
			a := model.Record{"phishing": 80, "password": 60}
			b := model.Record{"password": 60, "phishing": 80}
			So(a.Total(), ShouldEqual, 140)
			So(b.Total(), ShouldEqual, a.Total())
		})
	})
}

func TestRecordClone(t *testing.T) {
	Convey("Given a record", t, func() {
		r := model.Record{"quiz": 40}

		Convey("When cloning and mutating the clone", func() {
			c := r.Clone()
			c["quiz"] = 90
			c["injection"] = 10

			Convey("Then the original is untouched", func() {
				So(r["quiz"], ShouldEqual, 40)
				So(len(r), ShouldEqual, 1)
			})
		})
	})
}
