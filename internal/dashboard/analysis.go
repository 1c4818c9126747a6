package dashboard

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/tasi/internal/chart"
	"github.com/newthinker/tasi/internal/core"
	"github.com/newthinker/tasi/internal/job"
	"github.com/newthinker/tasi/internal/loader"
	"github.com/newthinker/tasi/internal/mockdata"
	"github.com/newthinker/tasi/internal/view"
)

// IndicatorAll selects the full indicator report.
const IndicatorAll = "all"

// LoadIndicators loads indicator data for symbol and draws the indicator
// chart, then refreshes the signals. A failed indicator load is reported to
// the user and leaves the signals and the chart untouched.
func (c *Controller) LoadIndicators(ctx context.Context, symbol, indicator string) (Outcome, error) {
	var o Outcome
	if symbol == "" {
		c.notify(&o, view.NotifyError, "يرجى اختيار سهم أولاً")
		return o, core.ErrStockRequired
	}
	if indicator == "" {
		indicator = IndicatorAll
	}

	tok := c.regions.Begin(view.RegionCurrentSignals)
	c.mu.Lock()
	c.selected = symbol
	c.mu.Unlock()

	report, err := loader.Act(ctx, c.deps.Loader, "indicators",
		func(ctx context.Context) (*core.IndicatorReport, error) {
			if indicator == IndicatorAll {
				return c.deps.Backend.Indicators(ctx, symbol)
			}
			return c.deps.Backend.SpecificIndicator(ctx, symbol, indicator, map[string]any{})
		})
	if err != nil {
		c.notify(&o, view.NotifyError, "حدث خطأ في تحميل المؤشرات")
		return o, err
	}

	if c.regions.Current(tok) {
		line := chart.IndicatorLine(report.Indicators, indicator, c.deps.Generator.Oscillator)
		c.charts.Draw(chart.CanvasIndicators, line)
		o.drew(chart.CanvasIndicators)
	}

	c.loadSignals(ctx, &o, tok, symbol)
	c.notify(&o, view.NotifySuccess, "تم تحميل المؤشرات بنجاح")
	c.finish(&o)
	return o, nil
}

// LoadSignals refreshes the signal panel of symbol.
func (c *Controller) LoadSignals(ctx context.Context, symbol string) (Outcome, error) {
	var o Outcome
	if symbol == "" {
		return o, core.ErrStockRequired
	}
	c.loadSignals(ctx, &o, c.regions.Begin(view.RegionCurrentSignals), symbol)
	c.finish(&o)
	return o, nil
}

func (c *Controller) loadSignals(ctx context.Context, o *Outcome, tok view.Token, symbol string) {
	report := read(o, loader.Read(ctx, c.deps.Loader, "signals",
		func(ctx context.Context) (*core.SignalReport, error) { return c.deps.Backend.Signals(ctx, symbol) },
		func() *core.SignalReport {
			r := c.deps.Generator.Signals(symbol)
			return &r
		}))
	c.render(o, tok, view.SignalsView{Report: report})
}

// LoadPopularIndicators renders the indicator catalog.
func (c *Controller) LoadPopularIndicators(ctx context.Context) Outcome {
	var o Outcome
	c.loadPopularIndicators(ctx, &o)
	c.finish(&o)
	return o
}

func (c *Controller) loadPopularIndicators(ctx context.Context, o *Outcome) {
	tok := c.regions.Begin(view.RegionPopularIndicators)
	catalog := read(o, loader.Read(ctx, c.deps.Loader, "popular-indicators",
		c.deps.Backend.PopularIndicators, c.deps.Generator.PopularIndicators))
	c.render(o, tok, catalog)
}

// ApplyStrategy starts a strategy job. The results region shows a pending
// state right away and the result once the job completes; a newer strategy
// request supersedes an unfinished one.
func (c *Controller) ApplyStrategy(key string) (Outcome, *job.Job) {
	var o Outcome
	key = mockdata.NormalizeStrategy(key)

	tok := c.regions.Begin(view.RegionStrategyResults)
	j := c.deps.Jobs.Create("strategy:"+key, c.id)

	c.mu.Lock()
	if err := c.ctx.Err(); err != nil {
		c.mu.Unlock()
		c.failJob(j.ID, err)
		if got, err := c.deps.Jobs.Get(j.ID); err == nil {
			j = got
		}
		return o, j
	}
	c.strategy = key
	c.wg.Add(1)
	c.mu.Unlock()

	c.render(&o, tok, view.StrategyView{Key: key, Pending: true, JobID: j.ID})

	go func() {
		defer c.wg.Done()
		c.runStrategy(tok, j.ID, key)
	}()
	return o, j
}

func (c *Controller) runStrategy(tok view.Token, id, key string) {
	c.deps.Jobs.Update(id, func(j *job.Job) { j.Status = job.StatusRunning })

	timer := time.NewTimer(c.deps.Options.StrategyDelay)
	defer timer.Stop()

	select {
	case <-c.ctx.Done():
		c.failJob(id, c.ctx.Err())
		return
	case <-timer.C:
	}

	result := mockdata.Strategy(key)
	c.deps.Jobs.Update(id, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Result = result
	})
	c.recordJob(job.StatusComplete)

	var o Outcome
	if !c.render(&o, tok, view.StrategyView{Key: key, Result: &result, JobID: id}) {
		c.log.Debug("strategy result superseded", zap.String("job", id))
		return
	}
	c.notify(&o, view.NotifySuccess, "تم تطبيق استراتيجية "+view.StrategyName(key))
}

func (c *Controller) failJob(id string, err error) {
	if err == nil {
		err = errors.New("strategy job aborted")
	}
	c.deps.Jobs.Update(id, func(j *job.Job) {
		j.Status = job.StatusFailed
		j.Error = err.Error()
	})
	c.recordJob(job.StatusFailed)
}

func (c *Controller) recordJob(status job.Status) {
	if c.deps.JobRecorder != nil {
		c.deps.JobRecorder.RecordStrategyJob(string(status))
	}
}

// Job returns a strategy job started by this session.
func (c *Controller) Job(id string) (*job.Job, error) {
	j, err := c.deps.Jobs.Get(id)
	if err != nil {
		return nil, err
	}
	if j.Session != c.id {
		return nil, core.ErrJobNotFound
	}
	return j, nil
}
