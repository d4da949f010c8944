package model_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/okian/tiewatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPair(t *testing.T) {
	Convey("Given two player ids", t, func() {
		Convey("When building a pair in either order", func() {
			ab := model.NewPair("a", "b")
			ba := model.NewPair("b", "a")

			Convey("Then both orders give the same key", func() {
				So(ab, ShouldEqual, ba)
				lo, hi := ab.Players()
				So(lo, ShouldEqual, model.PlayerID("a"))
				So(hi, ShouldEqual, model.PlayerID("b"))
				So(ab.Other("a"), ShouldEqual, model.PlayerID("b"))
				So(ab.Contains("c"), ShouldBeFalse)
			})
		})

		Convey("When both ids are the same", func() {
			Convey("Then building a pair panics", func() {
				So(func() { model.NewPair("a", "a") }, ShouldPanic)
			})
		})
	})
}

func TestResolvePlacements(t *testing.T) {
	Convey("Given two placements", t, func() {
		Convey("When the first player placed lower", func() {
			pair, outcome := model.ResolvePlacements("p2", 1, "p1", 2)
			winner, ok := outcome.Winner()

			Convey("Then the first player won", func() {
				So(ok, ShouldBeTrue)
				So(winner, ShouldEqual, model.PlayerID("p2"))
				So(pair.First(), ShouldEqual, model.PlayerID("p1"))
			})
		})

		Convey("When the second player placed lower", func() {
			_, outcome := model.ResolvePlacements("p1", 2, "p2", 1)
			winner, _ := outcome.Winner()
			So(winner, ShouldEqual, model.PlayerID("p2"))
		})

		Convey("When placements are equal", func() {
			_, outcome := model.ResolvePlacements("p1", 0, "p2", 0)
			So(outcome.IsPending(), ShouldBeTrue)
			So(outcome, ShouldResemble, model.Pending)
		})
	})
}

func TestMatchRecordValidate(t *testing.T) {
	Convey("Given feed records", t, func() {
		So(model.MatchRecord{PlayerA: "1", PlayerB: "2"}.Validate(), ShouldBeNil)
		So(errors.Is(model.MatchRecord{PlayerA: "1", PlayerB: "1"}.Validate(), model.ErrMalformedInput), ShouldBeTrue)
		So(errors.Is(model.MatchRecord{PlayerA: "", PlayerB: "1"}.Validate(), model.ErrMalformedInput), ShouldBeTrue)
	})
}

func TestCompareGroupIDs(t *testing.T) {
	Convey("Given unordered group ids", t, func() {
		ids := []model.GroupID{"10", "2", "B1", "1", "A10", "A2", "A", "007"}
		slices.SortFunc(ids, model.CompareGroupIDs)

		Convey("Then they sort naturally", func() {
			So(ids, ShouldResemble, []model.GroupID{"1", "2", "007", "10", "A", "A2", "A10", "B1"})
		})

		Convey("Then equal ids compare as zero", func() {
			So(model.CompareGroupIDs("A3", "A3"), ShouldEqual, 0)
		})
	})

	Convey("Given digit runs wider than 64 bits", t, func() {
		small := model.GroupID("99999999999999999999")
		large := model.GroupID("100000000000000000000")

		Convey("Then they still compare by numeric value", func() {
			So(model.CompareGroupIDs(small, large), ShouldEqual, -1)
			So(model.CompareGroupIDs(large, small), ShouldEqual, 1)
			So(model.CompareGroupIDs("A"+small+"z", "A"+large), ShouldEqual, -1)
		})

		Convey("Then leading zeros only break exact numeric ties", func() {
			So(model.CompareGroupIDs("0000000000000000000000009", "10"), ShouldEqual, -1)
			So(model.CompareGroupIDs("01", "1"), ShouldEqual, -1)
		})
	})
}

func TestGroupRecord(t *testing.T) {
	Convey("Given matches keyed by pair", t, func() {
		rec := model.NewGroupRecord("7", map[model.Pair]model.Outcome{
			model.NewPair("c", "b"): model.Pending,
			model.NewPair("a", "b"): model.Decided("a"),
			model.NewPair("a", "c"): model.Decided("c"),
		})

		Convey("Then matches are in pair order and players are derived", func() {
			So(rec.ID(), ShouldEqual, model.GroupID("7"))
			So(rec.Players(), ShouldResemble, []model.PlayerID{"a", "b", "c"})
			matches := rec.Matches()
			So(matches[0].Pair, ShouldEqual, model.NewPair("a", "b"))
			So(matches[1].Pair, ShouldEqual, model.NewPair("a", "c"))
			So(matches[2].Pair, ShouldEqual, model.NewPair("b", "c"))
			So(rec.PendingCount(), ShouldEqual, 1)
			So(rec.DecidedCount(), ShouldEqual, 2)
			So(rec.Index("c"), ShouldEqual, 2)
			So(rec.Index("z"), ShouldEqual, -1)
		})

		Convey("Then accessors return copies", func() {
			players := rec.Players()
			players[0] = "zz"
			So(rec.Players()[0], ShouldEqual, model.PlayerID("a"))
		})
	})

	Convey("Given a decided match won by an outsider", t, func() {
		Convey("Then building the record panics", func() {
			So(func() {
				model.NewGroupRecord("1", map[model.Pair]model.Outcome{
					model.NewPair("a", "b"): model.Decided("x"),
				})
			}, ShouldPanic)
		})
	})
}

func TestClassificationString(t *testing.T) {
	Convey("Given each classification", t, func() {
		So(model.Impossible.String(), ShouldEqual, "IMPOSSIBLE")
		So(model.Possible.String(), ShouldEqual, "POSSIBLE")
		So(model.Guaranteed.String(), ShouldEqual, "GUARANTEED")
		So(model.Classification(9).String(), ShouldEqual, "UNKNOWN")
	})
}

func TestBranchesWins(t *testing.T) {
	Convey("Given branches over a roster", t, func() {
		b := model.Branches{
			Players: []model.PlayerID{"a", "b"},
			Vectors: []model.ScoreVector{{1, 0}, {0, 1}},
		}
		So(b.Len(), ShouldEqual, 2)
		So(b.Wins(1, "b"), ShouldEqual, 1)
		So(b.Wins(0, "z"), ShouldEqual, -1)
		So(b.Vectors[0].Sum(), ShouldEqual, 1)
	})
}
