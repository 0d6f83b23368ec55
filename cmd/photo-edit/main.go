// Command photo-edit runs the ID card photo pipeline on image files.
//
//	photo-edit render portrait.jpg -o card-photo.png --rotation 90 --sharpen 40
//	photo-edit info portrait.jpg
package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// Version information - set by ldflags during build
var Version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "photo-edit",
		Short:         "Crop, rotate and filter photos for ID cards",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCmd(), newInfoCmd())
	return root
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatalf("photo-edit: %v", err)
	}
}
