// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/recoil"
	"code.hybscloud.com/recoil/loop"
	"github.com/rs/zerolog"
)

type pipelineState struct {
	pair      int
	consumers []*recoil.Strand
}

// pipeline starts cfg.Pairs producer/consumer pairs, each joined by its own
// channel, and returns the number of messages consumed. The first consumer
// failure fails the pipeline.
func pipeline(cfg config, log zerolog.Logger) kont.Eff[int] {
	spawn := recoil.Loop(pipelineState{}, func(st pipelineState) kont.Eff[kont.Either[pipelineState, []*recoil.Strand]] {
		if st.pair == cfg.Pairs {
			return kont.Pure(kont.Right[pipelineState, []*recoil.Strand](st.consumers))
		}
		ch := recoil.NewChannel[int]()
		plog := log.With().Int("pair", st.pair).Logger()
		return kont.Bind(recoil.Go(produce(ch, cfg, plog)), func(*recoil.Strand) kont.Eff[kont.Either[pipelineState, []*recoil.Strand]] {
			return kont.Bind(recoil.Go(consume(ch, cfg, plog)), func(c *recoil.Strand) kont.Eff[kont.Either[pipelineState, []*recoil.Strand]] {
				next := pipelineState{pair: st.pair + 1, consumers: append(st.consumers, c)}
				return kont.Pure(kont.Left[pipelineState, []*recoil.Strand](next))
			})
		})
	})
	return kont.Bind(spawn, joinAll)
}

// joinAll adopts every consumer in order and sums their counts.
func joinAll(consumers []*recoil.Strand) kont.Eff[int] {
	type acc struct{ i, total int }
	return recoil.Loop(acc{}, func(a acc) kont.Eff[kont.Either[acc, int]] {
		if a.i == len(consumers) {
			return kont.Pure(kont.Right[acc, int](a.total))
		}
		return kont.Bind(recoil.Adopt[int](consumers[a.i]), func(n int) kont.Eff[kont.Either[acc, int]] {
			return kont.Pure(kont.Left[acc, int](acc{i: a.i + 1, total: a.total + n}))
		})
	})
}

// produce writes 0..cfg.Messages-1 to ch, sleeping cfg.Interval before
// each write, then closes ch. A channel closed by the consumer ends it early.
func produce(ch *recoil.Channel[int], cfg config, log zerolog.Logger) kont.Eff[int] {
	return recoil.Loop(0, func(i int) kont.Eff[kont.Either[int, int]] {
		if i == cfg.Messages {
			ch.Close()
			log.Debug().Int("sent", i).Msg("producer done")
			return kont.Pure(kont.Right[int, int](i))
		}
		write := kont.Then(loop.Sleep(cfg.Interval), ch.Write(i))
		return kont.Bind(recoil.Try(write), func(e kont.Either[error, struct{}]) kont.Eff[kont.Either[int, int]] {
			if err, ok := e.GetLeft(); ok {
				if errors.Is(err, recoil.ErrChannelClosed) {
					log.Debug().Int("sent", i).Msg("producer stopped by consumer")
					return kont.Pure(kont.Right[int, int](i))
				}
				return recoil.Fail[kont.Either[int, int]](err)
			}
			return kont.Pure(kont.Left[int, int](i + 1))
		})
	})
}

// consume reads ch until it is closed, waiting at most cfg.Timeout for each
// message. On timeout it closes ch and fails.
func consume(ch *recoil.Channel[int], cfg config, log zerolog.Logger) kont.Eff[int] {
	return recoil.Loop(0, func(n int) kont.Eff[kont.Either[int, int]] {
		return kont.Bind(recoil.Try(loop.Timeout(cfg.Timeout, ch.Read())), func(e kont.Either[error, int]) kont.Eff[kont.Either[int, int]] {
			if err, ok := e.GetLeft(); ok {
				if errors.Is(err, recoil.ErrChannelClosed) {
					log.Debug().Int("received", n).Msg("consumer done")
					return kont.Pure(kont.Right[int, int](n))
				}
				ch.Close()
				return recoil.Fail[kont.Either[int, int]](fmt.Errorf("consumer after %d messages: %w", n, err))
			}
			v, _ := e.GetRight()
			log.Trace().Int("value", v).Msg("received")
			return kont.Pure(kont.Left[int, int](n + 1))
		})
	})
}
