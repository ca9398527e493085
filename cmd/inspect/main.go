// Command inspect dumps the aggregate keyspaces of a boardd data dir.
// Useful when checking what a reconcile sweep would touch.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"boardd/pkg/aggregate"
	"boardd/pkg/logger"
)

func main() {
	var path, user string
	flag.StringVar(&path, "path", "", "aggregate db path")
	flag.StringVar(&user, "user", "", "limit activity output to one user")
	flag.Parse()
	if path == "" {
		fmt.Fprintln(os.Stderr, "--path required")
		os.Exit(2)
	}
	logger.Init()

	s, err := aggregate.Open(path, aggregate.NewStream(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "open failed: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	ctx := context.Background()
	ids, err := s.ThreadIDs(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("threads referenced: %d\n", len(ids))
	for _, id := range ids {
		fmt.Printf("  %s\n", id)
	}

	if user != "" {
		entries, err := s.UserActivity(ctx, user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "activity scan failed: %v\n", err)
			os.Exit(1)
		}
		for _, e := range entries {
			b, _ := json.Marshal(e)
			fmt.Println(string(b))
		}
	}
}
