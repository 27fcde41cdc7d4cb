package cmd

import (
	"context"
	"flag"

	"github.com/etnz/apotek/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `apotek topic [<topic>...]

  Shows the documentation of the topics, the list of topics by default, or
  every topic with '*'.
`
}

func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (*topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}
	doc, err := docs.GetTopics(topics...)
	if err != nil {
		return fail("Error reading doc", err)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
