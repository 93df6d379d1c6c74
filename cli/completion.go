package cli

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var (
	predictJournal  = predict.Files("*.journal")
	predictFormat   = predict.Set{"plain", "pretty", "csv", "xlsx"}
	predictDayCount = predict.Set{"30/360us", "act/365f"}
)

// Completion describes the commands and flags for shell completion. Running
// the binary with COMP_INSTALL=1 installs it into the user's shell.
func Completion() *complete.Command {
	global := map[string]complete.Predictor{
		"f":         predictJournal,
		"file":      predictJournal,
		"telemetry": predict.Nothing,
	}
	with := func(flags map[string]complete.Predictor) map[string]complete.Predictor {
		for name, p := range global {
			flags[name] = p
		}
		return flags
	}

	return &complete.Command{
		Sub: map[string]*complete.Command{
			"lots": {Flags: with(map[string]complete.Predictor{
				"c": predict.Something, "commodity": predict.Something,
				"n": predict.Something, "no-desc": predict.Something,
				"o": predict.Set{"plain", "pretty", "csv"}, "output": predict.Set{"plain", "pretty", "csv"},
				"watch": predict.Nothing,
			})},
			"sell": {Flags: with(map[string]complete.Predictor{
				"c": predict.Something, "commodity": predict.Something,
				"a": predict.Something, "cash-account": predict.Something,
				"r": predict.Something, "revenue-account": predict.Something,
				"d": predict.Something, "date": predict.Something,
				"q": predict.Something, "quantity": predict.Something,
				"p": predict.Something, "price": predict.Something,
				"n": predict.Something, "no-desc": predict.Something,
				"description": predict.Something,
			})},
			"info": {Flags: with(map[string]complete.Predictor{
				"o": predictFormat, "output": predictFormat,
				"output-file": predict.Files("*"),
				"force":       predict.Nothing,
				"n":           predict.Something, "no-desc": predict.Something,
				"day-count": predictDayCount,
				"watch":     predict.Nothing,
			})},
		},
		Flags: with(map[string]complete.Predictor{
			"version": predict.Nothing,
			"help":    predict.Nothing,
		}),
	}
}
