package main

/* Tim Henderson (tadh@case.edu)
*
* Copyright (c) 2015, Tim Henderson, Case Western Reserve University
* Cleveland, Ohio 44106. All Rights Reserved.
*
* This library is free software; you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation; either version 3 of the License, or (at
* your option) any later version.
*
* This library is distributed in the hope that it will be useful, but
* WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
* General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this library; if not, write to the Free Software
* Foundation, Inc.,
*   51 Franklin Street, Fifth Floor,
*   Boston, MA  02110-1301
*   USA
 */

import (
	"fmt"
	"os"
	"sync"
)

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/timtadh/data-structures/errors"
	"github.com/timtadh/getopt"
	"golang.org/x/sync/errgroup"
)

import (
	"github.com/winkyWang/Arabesque/cmd"
	"github.com/winkyWang/Arabesque/config"
	"github.com/winkyWang/Arabesque/embedding"
	"github.com/winkyWang/Arabesque/graph"
	"github.com/winkyWang/Arabesque/odag"
	"github.com/winkyWang/Arabesque/pattern"
)

func init() {
	cmd.UsageMessage = "find-embeddings --help"
	cmd.ExtendedMessage = `
find-embeddings -p <pattern> <graph>

Enumerates every embedding of the pattern in the graph by seeding a
domain storage with the full candidate universe and driving one
partitioned reader per worker over it.

Options
    -h, --help                view this message
    -p, --pattern=<string>    the pattern, '<vertices>;<src>-<targ>[:<label>],...'
                              e.g. '3;0-1,1-2' for a path on 3 positions
    --partitions=<int>        number of workers (default 1)
    --blocks=<int>            number of enumeration blocks (default 100)
    --max-block-size=<int>    cap on the block size (default 10000)
    --edge-induced            match edge-induced instead of vertex-induced
    --labelled                honor edge labels
    --flush=<method>          after enumerating, flush the storage and
                              print the unit keys (pattern, entries, parts)

Graph file format (gzip ok): 'v <label>' and 'e <src> <targ> [<label>]'
lines; vertices take ids in file order.
`
}

// miningContext is the permissive mining logic for the tool: every
// filter accepts, so the reader's output is exactly the set of
// structurally valid embeddings.
type miningContext struct {
	g           *graph.Memory
	edgeInduced bool
	partition   int
}

func (c *miningContext) Graph() graph.MainGraph {
	return c.g
}

func (c *miningContext) NewEmbedding() (embedding.Embedding, error) {
	if c.edgeInduced {
		return embedding.NewEdgeInduced(c.g), nil
	}
	return embedding.NewVertexInduced(c.g), nil
}

func (c *miningContext) Step() int {
	return 0
}

func (c *miningContext) PartitionID() int {
	return c.partition
}

func (c *miningContext) FilterCandidates(emb embedding.Embedding, candidates *roaring.Bitmap) {
}

func (c *miningContext) FilterWord(emb embedding.Embedding, word int) bool {
	return true
}

func (c *miningContext) Filter(emb embedding.Embedding) bool {
	return true
}

func (c *miningContext) ShouldExpand(emb embedding.Embedding) bool {
	return true
}

func (c *miningContext) AggregationFilter(p pattern.Pattern) bool {
	return true
}

func main() {
	os.Exit(run())
}

func run() int {
	args, optargs, err := getopt.GetOpt(
		os.Args[1:],
		"hp:",
		[]string{
			"help",
			"pattern=",
			"partitions=",
			"blocks=",
			"max-block-size=",
			"edge-induced",
			"labelled",
			"flush=",
		},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		cmd.Usage(cmd.ErrorCodes["opts"])
	}

	conf := config.Default()
	patternStr := ""
	edgeInduced := false
	labelled := false
	flushMethod := ""
	for _, oa := range optargs {
		switch oa.Opt() {
		case "-h", "--help":
			cmd.Usage(0)
		case "-p", "--pattern":
			patternStr = oa.Arg()
		case "--partitions":
			conf.NumberOfPartitions = cmd.ParseInt(oa.Arg())
		case "--blocks":
			conf.NumberOfBlocks = cmd.ParseInt(oa.Arg())
		case "--max-block-size":
			conf.MaxBlockSize = cmd.ParseInt(oa.Arg())
		case "--edge-induced":
			edgeInduced = true
		case "--labelled":
			labelled = true
		case "--flush":
			flushMethod = oa.Arg()
		default:
			fmt.Fprintf(os.Stderr, "Unknown flag '%v'\n", oa.Opt())
			cmd.Usage(cmd.ErrorCodes["opts"])
		}
	}

	if patternStr == "" {
		fmt.Fprintf(os.Stderr, "You must supply a pattern (-p)\n")
		cmd.Usage(cmd.ErrorCodes["opts"])
	}
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "You must supply exactly an input path\n")
		fmt.Fprintf(os.Stderr, "You gave: %v\n", args)
		cmd.Usage(cmd.ErrorCodes["opts"])
	}
	inputPath := cmd.AssertFileOrDirExists(args[0])

	input, closer := cmd.Input(inputPath)
	g, err := graph.Load(input, labelled)
	closer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "There was error during the loading process\n")
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	errors.Logf("INFO", "loaded graph with %v vertices and %v edges", g.NumVertices(), g.NumEdges())

	pat, err := pattern.Parse(patternStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "There was error during the parsing the pattern '%v'\n", patternStr)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	errors.Logf("INFO", "loaded pattern %v", pat)

	numberOfDomains := pat.NumberOfVertices()
	universe := g.NumVertices()
	if edgeInduced {
		numberOfDomains = pattern.NumberOfEdges(pat)
		universe = g.NumEdges()
	}
	storage, err := odag.NewDomainStorage(numberOfDomains)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	for i := 0; i < numberOfDomains; i++ {
		for w := 0; w < universe; w++ {
			if err := storage.AddWord(i, w); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				return 1
			}
		}
	}
	errors.Logf("INFO", "seeded %v, universe %v", storage, storage.NumberOfEnumerations())

	var mu sync.Mutex
	total := 0
	var group errgroup.Group
	for p := 0; p < conf.NumberOfPartitions; p++ {
		p := p
		group.Go(func() error {
			ctx := &miningContext{g: g, edgeInduced: edgeInduced, partition: p}
			r, err := storage.GetReader(pat, ctx, conf.NumberOfPartitions, conf.NumberOfBlocks, conf.MaxBlockSize)
			if err != nil {
				return err
			}
			count := 0
			for emb, ok := r.Next(); ok; emb, ok = r.Next() {
				errors.Logf("INFO", "partition %v id %v embedding %v", p, r.EnumerationID(), emb)
				count++
			}
			errors.Logf("INFO", "partition %v %v", p, r.Report())
			mu.Lock()
			total += count
			mu.Unlock()
			return r.Close()
		})
	}
	if err := group.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "There was error during the enumeration process\n")
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	errors.Logf("INFO", "total embeddings %v", total)

	if flushMethod != "" {
		method, err := odag.ParseFlushMethod(flushMethod)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		stash := odag.NewStash()
		accumulated, err := stash.Storage(pat, numberOfDomains)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		if err := accumulated.Aggregate(storage); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		ctx := &miningContext{g: g, edgeInduced: edgeInduced}
		units := 0
		var u *odag.Unit
		it := stash.Flush(method, ctx, conf.NumberOfPartitions)
		for u, err, it = it(); it != nil; u, err, it = it() {
			errors.Logf("INFO", "unit pattern %v domain %v word %v part %v", u.Pattern, u.DomainID, u.WordID, u.PartID)
			units++
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "There was error during the flush process\n")
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		errors.Logf("INFO", "flushed %v units by %v", units, method)
	}

	errors.Logf("INFO", "done")
	return 0
}
