package main

import (
	"context"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/docker/go-units"
	"github.com/hashicorp/go-multierror"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"reflect-cloner/cloner"
	"reflect-cloner/internal/testmodel"
	"reflect-cloner/policy"
)

const envPrefix = "clonebench"

type benchParams struct {
	customers   int
	seed        int64
	count       int
	traversal   string
	parallelism int
	policyPath  string
	exported    bool
	strict      bool
	verify      bool
	dump        bool
	dumpDepth   int
	logLevel    string
}

func newBenchParams() benchParams {
	return benchParams{
		customers: 100,
		seed:      1,
		count:     1,
		traversal: cloner.DepthFirst.String(),
		dumpDepth: 4,
		logLevel:  logrus.InfoLevel.String(),
	}
}

func newRootCommand(r benchRunner) *cobra.Command {
	params := newBenchParams()

	cmd := &cobra.Command{
		Use:   "clonebench",
		Short: "Benchmark deep copies of a random fixture graph",
		Long: `Build a random web shop graph (customers, orders, shared products) and
deep copy it repeatedly, printing timings and allocations per copy.

	clonebench --customers 1000 --traversal bfs --count 3
	clonebench -n 50 --parallelism 8 --policy share-products.yaml

Flags may be set through CLONEBENCH_* environment variables.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return checkEnvironmentVariables(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return benchMain(cmd.Context(), params, cmd.OutOrStdout(), cmd.ErrOrStderr(), r)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&params.customers, "customers", "n", params.customers, "number of customers in the fixture graph")
	flags.Int64Var(&params.seed, "seed", params.seed, "random seed of the fixture graph")
	flags.IntVar(&params.count, "count", params.count, "number of benchmark runs")
	flags.StringVarP(&params.traversal, "traversal", "t", params.traversal, "traversal order: depth-first (dfs) or breadth-first (bfs)")
	flags.IntVarP(&params.parallelism, "parallelism", "p", params.parallelism, "goroutines per copy, negative for no limit")
	flags.StringVar(&params.policyPath, "policy", "", "YAML copy policy file")
	flags.BoolVar(&params.exported, "exported", false, "copy exported fields only")
	flags.BoolVar(&params.strict, "strict", false, "fail on fields the capability cannot reach")
	flags.BoolVar(&params.verify, "verify", true, "check the copy is equal to the original before benchmarking")
	flags.BoolVar(&params.dump, "dump", false, "dump one copy after the runs")
	flags.IntVar(&params.dumpDepth, "dump-depth", params.dumpDepth, "nesting levels shown by --dump")
	flags.StringVar(&params.logLevel, "log-level", params.logLevel, "log level")

	return cmd
}

// checkEnvironmentVariables sets every flag not given on the command line
// from its CLONEBENCH_ environment variable, if there is one.
func checkEnvironmentVariables(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var errs *multierror.Error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}

		if err := cmd.Flags().Set(f.Name, v.GetString(f.Name)); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "environment variable for --%s", f.Name))
		}
	})

	return errs.ErrorOrNil()
}

func benchMain(ctx context.Context, params benchParams, out, errOut io.Writer, r benchRunner) error {
	log, err := newLogger(params.logLevel, errOut)
	if err != nil {
		return err
	}

	c, err := newCloner(params, log)
	if err != nil {
		return err
	}

	defer logDiagnostics(log, c.Diagnostics)

	root := testmodel.Random(params.seed, params.customers)

	log.WithFields(logrus.Fields{
		"customers": len(root.Customers),
		"products":  len(root.Products),
		"seed":      params.seed,
	}).Info("fixture graph built")

	if params.verify {
		cp, err := cloner.CloneAs(c, root)
		if err != nil {
			return err
		}

		if diff := testmodel.Diff(root, cp); diff != "" {
			return errors.Errorf("copy differs from the original (-original +copy):\n%s", diff)
		}
	}

	results := make([]testing.BenchmarkResult, 0, params.count)

	for i := range params.count {
		br, err := r.run(func() error {
			_, err := c.CloneContext(ctx, root)
			return err
		})
		if err != nil {
			return errors.Wrapf(err, "run %d", i+1)
		}

		log.WithFields(logrus.Fields{
			"run":     i + 1,
			"samples": br.N,
			"elapsed": br.T,
		}).Debug("benchmark run finished")

		results = append(results, br)
	}

	renderResults(out, params, results)

	if params.dump {
		cp, err := cloner.CloneAs(c, root)
		if err != nil {
			return err
		}

		cfg := spew.ConfigState{
			Indent:                  "  ",
			MaxDepth:                params.dumpDepth,
			SortKeys:                true,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
		}
		cfg.Fdump(out, cp)
	}

	return nil
}

func newLogger(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --log-level")
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)

	return log, nil
}

func newCloner(params benchParams, log logrus.FieldLogger) (*cloner.Cloner, error) {
	traversal, err := cloner.ParseTraversal(params.traversal)
	if err != nil {
		return nil, err
	}

	opts := []cloner.Option{
		cloner.WithTraversal(traversal),
		cloner.WithParallelism(params.parallelism),
		cloner.WithLogger(log),
	}

	if params.policyPath != "" {
		p, err := policy.LoadFile(params.policyPath, testmodel.Types()...)
		if err != nil {
			return nil, err
		}

		opts = append(opts, cloner.WithPolicy(p))
	}

	if params.exported {
		opts = append(opts, cloner.WithCapability(cloner.ExportedAccess()))
	}

	if params.strict {
		opts = append(opts, cloner.WithStrictAccess())
	}

	return cloner.New(opts...)
}

// logDiagnostics logs what the cloner noticed, including on failed runs.
func logDiagnostics(log logrus.FieldLogger, diagnostics func() cloner.Diagnostics) {
	d := diagnostics()

	for _, dg := range d.Infos {
		log.Debug(dg.String())
	}

	for _, dg := range d.Warnings {
		log.Warn(dg.String())
	}

	if err := d.Error(); err != nil {
		log.WithError(err).Error("copy failed for some types")
	}
}

func renderResults(w io.Writer, params benchParams, results []testing.BenchmarkResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"run", "traversal", "parallelism", "customers", "samples", "ns/op", "mem/op", "allocs/op"})

	for i, br := range results {
		table.Append([]string{
			strconv.Itoa(i + 1),
			params.traversal,
			strconv.Itoa(params.parallelism),
			strconv.Itoa(params.customers),
			strconv.Itoa(br.N),
			strconv.FormatInt(br.NsPerOp(), 10),
			units.BytesSize(float64(br.AllocedBytesPerOp())),
			strconv.FormatInt(br.AllocsPerOp(), 10),
		})
	}

	table.Render()
}

// benchRunner measures f, normally with testing.Benchmark.
type benchRunner interface {
	run(f func() error) (testing.BenchmarkResult, error)
}

type goBenchRunner struct{}

func (goBenchRunner) run(f func() error) (testing.BenchmarkResult, error) {
	var benchErr error

	br := testing.Benchmark(func(b *testing.B) {
		b.ReportAllocs()

		for range b.N {
			if err := f(); err != nil {
				benchErr = err
				b.FailNow()
			}
		}
	})

	if benchErr == nil && br.N == 0 {
		benchErr = errors.New("benchmark did not run")
	}

	return br, benchErr
}
