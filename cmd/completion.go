package cmd

import (
	"flag"

	"github.com/etnz/apotek"
	"github.com/etnz/apotek/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors predicts the values of the flags that are not plain numbers
// or paths.
var flagPredictors = map[string]complete.Predictor{
	"method":    predict.Set{"zscore", "iqr"},
	"column":    predict.Set(apotek.NumericColumns),
	"delimiter": predict.Set{";", ",", "\t", "|"},
	"config":    predict.Files("*.yaml"),
	"sqlite":    predict.Files("*.db"),
	"xlsx":      predict.Files("*.xlsx"),
	"s":         predict.Files("*.json"),
}

// Complete handles shell completion for the program name, when the shell asks
// for it. Run 'COMP_INSTALL=1 apotek' to install it.
func Complete(name string) {
	root := completion(flag.CommandLine)
	root.Sub = make(map[string]*complete.Command)
	names := make(predict.Set, 0, len(Commands))
	for _, c := range Commands {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		root.Sub[c.Name()] = completion(f)
		names = append(names, c.Name())
	}
	root.Sub["summary"].Args = predict.Files("*.json")
	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(append(topics, "*"))
	}
	root.Sub["help"] = &complete.Command{Args: names}
	root.Sub["flags"] = &complete.Command{Args: names}
	root.Sub["commands"] = &complete.Command{}
	root.Complete(name)
}

// completion returns the completion of the flags of f.
func completion(f *flag.FlagSet) *complete.Command {
	cmd := &complete.Command{Flags: make(map[string]complete.Predictor)}
	f.VisitAll(func(fl *flag.Flag) {
		if p, ok := flagPredictors[fl.Name]; ok {
			cmd.Flags[fl.Name] = p
			return
		}
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			cmd.Flags[fl.Name] = predict.Nothing
			return
		}
		cmd.Flags[fl.Name] = predict.Files("*")
	})
	return cmd
}
