// Command dm_chat is a small interactive client for manual testing:
// it joins the websocket push channel for the token's identity, prints
// incoming messages, and sends lines typed as "<peer> <text>" through
// the REST API.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Foysal-Munsy/careerostad-messaging/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("dm_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	token := flag.String("token", "", "JWT token (from /api/login)")
	flag.Parse()

	if *token == "" {
		return errors.New("-token is required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	wsURL := strings.Replace(*server, "http", "ws", 1) + "/ws?token=" + *token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	joinPayload, err := json.Marshal(proto.JoinData{})
	if err != nil {
		return fmt.Errorf("marshal join: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoin, Data: joinPayload}); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	go func() {
		for {
			var outbound proto.Outbound
			if err := wsjson.Read(ctx, conn, &outbound); err != nil {
				cancel()
				return
			}
			switch {
			case outbound.Error != nil:
				fmt.Printf("! %s: %s\n", outbound.Error.Code, outbound.Error.Msg)
			case outbound.Event == proto.EventNameMessage:
				raw, _ := json.Marshal(outbound.Data)
				var msg proto.EventMessage
				if json.Unmarshal(raw, &msg) == nil {
					fmt.Printf("< [%s] %s\n", msg.Sender, msg.Body)
				}
			case outbound.Event == proto.EventNameJoined:
				fmt.Println("* joined")
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		peer, text, ok := strings.Cut(line, " ")
		if !ok {
			fmt.Println("usage: <peer> <text>")
			continue
		}
		if err := send(ctx, *server, *token, peer, text); err != nil {
			fmt.Printf("! send: %v\n", err)
		}
	}
	return scanner.Err()
}

func send(ctx context.Context, server, token, peer, text string) error {
	body, err := json.Marshal(map[string]string{"receiver": peer, "body": text})
	if err != nil {
		return err
	}

	req, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodPost, server+"/api/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != stdhttp.StatusCreated {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
