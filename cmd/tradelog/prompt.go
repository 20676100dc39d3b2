package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"tradelog/pkg/xerr"
)

// prompt asks the operator what to do when no arguments were given.
func prompt(in io.Reader, out io.Writer) (request, error) {
	sc := bufio.NewScanner(in)
	ask := func(lines ...string) (string, error) {
		for _, l := range lines {
			fmt.Fprintln(out, l)
		}
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", xerr.New(xerr.KindIO, "read answer", err)
			}
			return "", xerr.New(xerr.KindConfiguration, "no answer given", nil)
		}
		return strings.TrimSpace(sc.Text()), nil
	}

	choice, err := ask(
		"Choose what you want to do:",
		"\t1 - stream live trades from Binance and save them",
		"\t2 - create a chart from already saved trades",
	)
	if err != nil {
		return request{}, err
	}

	switch choice {
	case "1":
		symbol, err := ask(
			"All data are appended into the corresponding files in txt format",
			"Please provide a valid Binance pair, e.g. BTCUSDT",
		)
		if err != nil {
			return request{}, err
		}
		filter, err := ask(
			"Please provide the filter to view data",
			"0 = raw data, 1 = human readable data, 2 = chart format",
		)
		if err != nil {
			return request{}, err
		}
		fmt.Fprintln(out, "Starting trade stream now...")
		return request{command: "stream", symbols: []string{symbol}, filter: filter}, nil
	case "2":
		symbol, err := ask("Choose the pair to chart:")
		if err != nil {
			return request{}, err
		}
		fmt.Fprintln(out, "Creating chart...")
		return request{command: "chart", symbols: []string{symbol}}, nil
	default:
		return request{}, xerr.Newf(xerr.KindConfiguration, nil, "unknown choice %q", choice)
	}
}
