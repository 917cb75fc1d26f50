package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/incubo-lab/pitchreview/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdHashPassword() *cli.Command {
	return &cli.Command{
		Name:  "hash-password",
		Usage: "Read a password from stdin and print its bcrypt hash for the credentials file",
		Action: func(ctx context.Context, c *cli.Command) error {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return goerr.Wrap(err, "failed to read password")
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return goerr.New("password is empty")
			}

			hash, err := usecase.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}
