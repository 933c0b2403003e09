package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"job-engine-be/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	userColor      = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgGreen)
	warnColor      = color.New(color.FgYellow)
	dimColor       = color.New(color.Faint)
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Send one message, or start an interactive chat when no message is given",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, session := clientFromFlags(cmd)
			if len(args) > 0 {
				return sendAndPrint(cmd.Context(), cmd.OutOrStdout(), client, session, strings.Join(args, " "))
			}
			return interactive(cmd.Context(), os.Stdin, cmd.OutOrStdout(), client, session)
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the messages of the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, session := clientFromFlags(cmd)
			res, err := client.History(cmd.Context(), session)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List the sessions held by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _ := clientFromFlags(cmd)
			sessions, err := client.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				dimColor.Fprintln(out, "no session")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(out, "%-36s %d messages\n", s.SessionId, s.MessageCount)
			}
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the session on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, session := clientFromFlags(cmd)
			if err := client.Clear(cmd.Context(), session); err != nil {
				return err
			}
			warnColor.Fprintf(cmd.OutOrStdout(), "session %s cleared\n", session)
			return nil
		},
	}
}

func interactive(ctx context.Context, in io.Reader, out io.Writer, client *apiClient, session string) error {
	dimColor.Fprintf(out, "session %s, /history /clear /quit\n", session)
	scanner := bufio.NewScanner(in)
	for {
		userColor.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/history":
			res, err := client.History(ctx, session)
			if err != nil {
				warnColor.Fprintln(out, err)
				continue
			}
			printHistory(out, res)
			continue
		case "/clear":
			if err := client.Clear(ctx, session); err != nil {
				warnColor.Fprintln(out, err)
			}
			continue
		}

		if err := sendAndPrint(ctx, out, client, session, line); err != nil {
			warnColor.Fprintln(out, err)
		}
	}
}

func sendAndPrint(ctx context.Context, out io.Writer, client *apiClient, session, message string) error {
	res, err := client.Chat(ctx, session, message)
	if err != nil {
		return err
	}
	printAnswer(out, res)
	return nil
}

func printAnswer(out io.Writer, res *dto.ChatResponse) {
	assistantColor.Fprintln(out, res.Answer)
	if res.JobSearch != nil {
		dimColor.Fprintf(out, "[job search] %q: %d results, %d shown\n", res.JobSearch.Query, res.JobSearch.Total, len(res.JobSearch.Jobs))
	}
	for i, src := range res.Sources {
		dimColor.Fprintf(out, "[source %d] %s\n", i+1, src.Content)
	}
	if res.Error != "" {
		warnColor.Fprintf(out, "[warning] %s\n", res.Error)
	}
}

func printHistory(out io.Writer, res *dto.ChatHistoryResponse) {
	if res.Count == 0 {
		dimColor.Fprintln(out, "empty history")
		return
	}
	for _, m := range res.Messages {
		if m.Role == "user" {
			userColor.Fprintf(out, "> %s\n", m.Content)
		} else {
			assistantColor.Fprintln(out, m.Content)
		}
	}
}
