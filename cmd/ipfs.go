package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/proofofimpact/poi/internal/config"
	"github.com/proofofimpact/poi/internal/ipfs"
	"github.com/proofofimpact/poi/internal/ui"
)

var ipfsCmd = &cobra.Command{
	Use:   "ipfs",
	Short: "Pin proof files and read content through the gateway",
}

var ipfsPinCmd = &cobra.Command{
	Use:   "pin <file>",
	Short: "Pin a file to IPFS through Pinata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := pinFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Pinned", [][2]string{
			{"File", ui.Val(filepath.Base(args[0]))},
			{"CID", ui.Addr(hash)},
			{"URL", ui.Meta(newIPFSClient().ImageURL(hash))},
		}))
		return nil
	},
}

var ipfsGetCmd = &cobra.Command{
	Use:   "get <cid>",
	Short: "Fetch pinned content through the gateway",
	Long: `Fetch content by CID (ipfs:// prefix accepted). Text is printed; images
are shown as a gateway link.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), config.RequestTimeout)
		defer cancel()
		c := newIPFSClient()
		content, err := ui.Spin("Fetching from IPFS…", func() (*ipfs.Content, error) {
			return c.Fetch(ctx, args[0])
		})
		if err != nil {
			return err
		}
		if content.IsImage() {
			fmt.Println(ui.Info("Image (" + content.ContentType + ")"))
			fmt.Println(ui.Hint(content.URL))
			return nil
		}
		fmt.Println(content.Text)
		return nil
	},
}

func init() {
	ipfsCmd.AddCommand(ipfsPinCmd, ipfsGetCmd)
}

func newIPFSClient() *ipfs.Client {
	return ipfs.New(cfg.PinataJWT, cfg.PinataAPIURL, cfg.IPFSGateway, ipfs.WithLogger(logger))
}

// pinFile uploads path and returns its CID.
func pinFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()
	c := newIPFSClient()
	return ui.Spin("Pinning "+filepath.Base(path)+" to IPFS…", func() (string, error) {
		return c.Pin(ctx, filepath.Base(path), f)
	})
}
