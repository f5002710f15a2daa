// cmd/javaflow/commands/serve.go
package commands

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"javaflow/internal/live"
)

// ServeCommand runs a standalone live-streaming server until interrupted,
// for watchers that want to attach before an analyze run starts.
func ServeCommand(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", 8765, "port to listen on")
	if err := fs.Parse(args); err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	s := live.NewServer(addr)
	s.Serve()
	fmt.Printf("serving live fixpoint events on ws://%s/events (ctrl-c to stop)\n", addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig

	return s.Close()
}
