package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gandalf-/apocrypha/client"
)

func runQuery(cmd *cobra.Command, args []string) error {
	host, err := resolveHost(hostFlag)
	if err != nil {
		return fmt.Errorf("remembering host: %w", err)
	}

	c, err := client.Dial(host, time.Duration(timeoutFlag)*time.Second)
	if err != nil {
		return err
	}
	defer c.Close()

	if len(args) > 0 {
		return runOne(c, args)
	}
	return runInteractive(c)
}

func runOne(c *client.Client, tokens []string) error {
	body, err := c.Query(tokens)
	if err != nil {
		return err
	}
	if body != "" {
		fmt.Println(body)
	}
	return nil
}

// runInteractive reads one query's tokens per line from stdin until
// EOF, printing each response as it comes back.
func runInteractive(c *client.Client) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		body, err := c.Query(tokens)
		if err != nil {
			return err
		}
		if body != "" {
			fmt.Println(body)
		}
	}
	return scanner.Err()
}
