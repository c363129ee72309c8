// Copyright 2025 The dynlm Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the dynlm command line tool.

dynlm examines the dynamic.lm language model that predictive keyboards keep
on a device. The model stores the word chains the keyboard learned as a
binary trie of vocabulary indices. dynlm locates that trie, resolves every
index through a word-list export of the same device, and writes each
predicted chain as one line:

	root -> see(12) -> you(9) -> tomorrow(4)

It can also score a message against the vocabulary: the share of the
message's words that the vocabulary knows, followed by every matched word
with its index and frequency.

# Usage

Run a full examination into a new folder:

	dynlm run --model dynamic.lm --vocab words.csv --message message.txt --out case-001

Paths left out are asked for when running in a terminal. The folder receives
timestamped result files, an activity log and a msgpack report bundle.

Inspect single stages:

	dynlm dump --model dynamic.lm --vocab words.csv
	dynlm match --vocab words.csv --message message.txt
	dynlm vocab --vocab words.csv --prefix tom

Browse past runs and saved reports:

	dynlm history --limit 10
	dynlm report "case-001/2024_05_11-14_03_00_PM result.msgpack"

# Configuration

Settings live in a TOML file, created with defaults on first use:

	[model]
	marker = "06646d6170"
	trie_offset = 9
	max_depth = 512

	[vocab]
	index_column = "#"
	word_column = "Word"
	frequency_column = "Frequency"
	model_index_offset = 1

	[output]
	timestamp_layout = "2006_01_02-15_04_05_PM"
	msgpack = true

	[ledger]
	enabled = true

Use --config to point at another file and -d for debug logging.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/dynlm/internal/cli"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(130)
	}()
}

func main() {
	sigHandler()
	cli.Execute()
}
