package command

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bucketmap/pkg/cmap"
)

// DemoCommand returns the demo command.
func DemoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Walk through insert, iterate, find, erase and accumulate",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "buckets",
				Aliases: []string{"b"},
				Usage:   "Bucket count",
				Value:   cmap.DefaultBucketCount,
			},
		},
		Action: func(c *cli.Context) error {
			buckets := c.Int("buckets")
			if buckets < 1 {
				return fmt.Errorf("--buckets must be at least 1, got %d", buckets)
			}
			return runDemo(stdout(c), buckets)
		},
	}
}

// counters is a value type that merges itself on conflict.
type counters struct {
	Hits   uint64
	Misses uint64
}

func (c counters) Accumulate(delta counters) counters {
	return counters{Hits: c.Hits + delta.Hits, Misses: c.Misses + delta.Misses}
}

func runDemo(w io.Writer, buckets int) error {
	// Integer keys hash to themselves so the walk below visits them in
	// bucket order.
	t := cmap.NewWithBuckets[int, string](buckets, cmap.WithHasher(cmap.IdentityInt[int]()))
	defer t.Destroy()

	t.Insert(10, "hello")
	t.Insert(20, "world")
	t.Insert(30, "ok")
	t.Insert(40, "noahyzhang")

	fmt.Fprintf(w, "table with %d buckets, %d entries\n", t.BucketCount(), t.Len())
	for it := t.Iter(); it.Next(); {
		fmt.Fprintf(w, "%d, %s\n", it.Key(), it.Value())
	}

	printFind(w, t, 10)
	t.Erase(10)
	fmt.Fprintln(w, "erase key: 10")
	printFind(w, t, 10)

	sums := cmap.NewWithBuckets[int, int](buckets)
	cmap.InsertOrAccumulate(sums, 10, 20)
	cmap.InsertOrAccumulate(sums, 10, 30)
	v, _ := sums.Find(10)
	fmt.Fprintf(w, "accumulate 20 then 30 into key 10: %d\n", v)

	stats := cmap.NewWithBuckets[int, counters](buckets)
	cmap.InsertOrCombine(stats, 10, counters{Hits: 10, Misses: 10})
	cmap.InsertOrCombine(stats, 10, counters{Hits: 20, Misses: 20})
	cv, _ := stats.Find(10)
	fmt.Fprintf(w, "combine {10 10} then {20 20} into key 10: {%d %d}\n", cv.Hits, cv.Misses)

	return nil
}

func printFind(w io.Writer, t *cmap.Table[int, string], key int) {
	if v, ok := t.Find(key); ok {
		fmt.Fprintf(w, "find key: %d, value: %s\n", key, v)
		return
	}
	fmt.Fprintf(w, "not found key: %d\n", key)
}
