package banner

import (
	"fmt"

	"boardd/pkg/config"
)

const banner = `
██████╗  ██████╗  █████╗ ██████╗ ██████╗ ██████╗
██╔══██╗██╔═══██╗██╔══██╗██╔══██╗██╔══██╗██╔══██╗
██████╔╝██║   ██║███████║██████╔╝██║  ██║██║  ██║
██╔══██╗██║   ██║██╔══██║██╔══██╗██║  ██║██║  ██║
██████╔╝╚██████╔╝██║  ██║██║  ██║██████╔╝██████╔╝
╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝ ╚═════╝
`

// Print renders the startup banner with the effective configuration.
func Print(eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:     %s\n", addr)
	fmt.Printf("Data dir:   %s\n", eff.DataDir)
	if eff.Config != nil {
		fmt.Printf("Content DB: %s\n", eff.Config.Content.Driver)
	}
	if version != "" {
		fmt.Printf("Version:    %s\n", version)
	}
	fmt.Printf("Config source: %s\n", src)
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("GET  /                      - Active threads, newest first")
	fmt.Println("POST /create-thread         - Create a thread (thread_name, genre_tag)")
	fmt.Println("GET  /thread/{id}           - Thread with its posts")
	fmt.Println("POST /create-post           - Add a post (thread_id, content)")
	fmt.Println("POST /react                 - React to a post (thread_id, post_id, kind)")
	fmt.Println("POST /archive-thread        - Snapshot and archive a thread")
	fmt.Println("POST /restore-thread        - Restore an archived thread")
	fmt.Println("GET  /metrics               - Prometheus metrics")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/create-thread' -H 'Content-Type: application/json' -d '{\"thread_name\":\"hello\",\"genre_tag\":\"general\"}'\n", addr)
	fmt.Printf("curl 'http://localhost%s/'\n", addr)
}
