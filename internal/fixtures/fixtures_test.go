package fixtures_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/tiewatch/internal/adapters/feed/fixture"
	"github.com/okian/tiewatch/internal/fixtures"
	"github.com/okian/tiewatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator config", t, func() {
		ctx := context.Background()
		config := &fixtures.Config{Groups: 5, PlayersPerGroup: 4, PendingRatio: 0.5, Seed: 42, Workers: 3}

		Convey("When a document is generated", func() {
			stats := &fixtures.Stats{}
			doc, err := fixtures.Generate(ctx, config, stats)

			Convey("Then every group is a full round robin", func() {
				So(err, ShouldBeNil)
				So(len(doc.Groups), ShouldEqual, 5)
				So(doc.Groups[0].ID, ShouldEqual, "1")
				So(doc.Groups[4].ID, ShouldEqual, "5")
				for _, g := range doc.Groups {
					So(len(g.Matches), ShouldEqual, 6)
					seen := map[string]bool{}
					for _, m := range g.Matches {
						So(m.A.ID, ShouldNotEqual, m.B.ID)
						seen[m.A.ID], seen[m.B.ID] = true, true
						decided := m.A.Placement != m.B.Placement
						pending := m.A.Placement == 0 && m.B.Placement == 0
						So(decided || pending, ShouldBeTrue)
					}
					So(len(seen), ShouldEqual, 4)
				}
				So(stats.Groups, ShouldEqual, 5)
				So(stats.Players, ShouldEqual, 20)
				So(stats.Matches, ShouldEqual, 30)
				So(stats.Seed, ShouldEqual, uint64(42))
			})

			Convey("Then the same seed gives the same document", func() {
				again, err := fixtures.Generate(ctx, &fixtures.Config{Groups: 5, PlayersPerGroup: 4, PendingRatio: 0.5, Seed: 42, Workers: 1}, &fixtures.Stats{})
				So(err, ShouldBeNil)
				So(again, ShouldResemble, doc)
			})
		})

		Convey("When no match may be pending", func() {
			config.PendingRatio = 0
			stats := &fixtures.Stats{}
			_, err := fixtures.Generate(ctx, config, stats)
			So(err, ShouldBeNil)
			So(stats.Pending, ShouldEqual, 0)
		})

		Convey("When every match is pending", func() {
			config.PendingRatio = 1
			stats := &fixtures.Stats{}
			_, err := fixtures.Generate(ctx, config, stats)
			So(err, ShouldBeNil)
			So(stats.Pending, ShouldEqual, 30)
		})

		Convey("When the seed is zero", func() {
			config.Seed = 0
			stats := &fixtures.Stats{}
			_, err := fixtures.Generate(ctx, config, stats)
			So(err, ShouldBeNil)
			So(stats.Seed, ShouldNotEqual, uint64(0))
		})

		Convey("When the settings are out of range", func() {
			for _, bad := range []fixtures.Config{
				{Groups: 0, PlayersPerGroup: 4},
				{Groups: 1, PlayersPerGroup: 1},
				{Groups: 1, PlayersPerGroup: 3, PendingRatio: 1.5},
			} {
				_, err := fixtures.Generate(ctx, &bad, &fixtures.Stats{})
				So(errors.Is(err, fixtures.ErrInvalidConfig), ShouldBeTrue)
			}
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := fixtures.Generate(cctx, config, &fixtures.Stats{})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given an output path in a new directory", t, func() {
		path := filepath.Join(t.TempDir(), "out", "groups.yaml")
		config := &fixtures.Config{Groups: 3, PlayersPerGroup: 5, PendingRatio: 0.3, Seed: 7, OutputFile: path}

		Convey("When the generator runs", func() {
			stats, err := fixtures.Run(context.Background(), config)

			Convey("Then the file loads back with every match", func() {
				So(err, ShouldBeNil)
				So(stats.OutputFile, ShouldEqual, path)
				doc, err := fixture.Load(path)
				So(err, ShouldBeNil)
				So(len(doc.Records()), ShouldEqual, 30)
				So(stats.Matches, ShouldEqual, 30)
			})
		})
	})
}
