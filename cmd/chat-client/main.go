package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"messenger/client"
)

type Config struct {
	ServerURL string
	Token     string
	SelfID    int64
	PeerID    int64
	GroupID   int64
	PageSize  int
}

func parseFlags() Config {
	config := Config{}

	flag.StringVar(&config.ServerURL, "url", "http://localhost:8080", "Messenger service URL")
	flag.StringVar(&config.Token, "token", "", "Auth token (Bearer)")
	flag.Int64Var(&config.SelfID, "self", 0, "Own user ID")
	flag.Int64Var(&config.PeerID, "peer", 0, "Peer user ID for a direct dialog")
	flag.Int64Var(&config.GroupID, "group", 0, "Group ID for a group conversation")
	flag.IntVar(&config.PageSize, "page-size", 20, "History page size")

	flag.Parse()
	return config
}

func main() {
	config := parseFlags()
	if config.SelfID == 0 || (config.PeerID == 0 && config.GroupID == 0) {
		log.Fatal("usage: chat-client -self <id> [-peer <id> | -group <id>] -token <token>")
	}

	var session *client.Session
	if config.GroupID > 0 {
		session = client.NewGroupSession(config.ServerURL, config.Token, config.SelfID, config.GroupID, config.PageSize)
	} else {
		session = client.NewDialogSession(config.ServerURL, config.Token, config.SelfID, config.PeerID, config.PageSize)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		cancel()
		session.Close()
		os.Exit(0)
	}()

	go session.Run(ctx)

	// Простая командная петля: текст отправляется как сообщение,
	// /more подгружает более старую страницу, /list печатает разговор
	fmt.Println("Connected. Type a message, /list, /more or /quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		switch line {
		case "":
			continue
		case "/quit":
			cancel()
			session.Close()
			return
		case "/list":
			printConversation(session)
		case "/more":
			started, err := session.Loader.LoadMore()
			if err != nil {
				log.Printf("load more failed: %v", err)
			} else if !started {
				fmt.Println("(no more history)")
			} else {
				printConversation(session)
			}
		default:
			if err := session.Send(line); err != nil {
				log.Printf("send failed (rolled back): %v", err)
			}
		}
	}
}

func printConversation(session *client.Session) {
	for _, msg := range session.Engine.Merged() {
		marker := ""
		if msg.Pending {
			marker = " (sending...)"
		}
		fmt.Printf("[%s] %d: %s%s\n", msg.CreatedAt.Format(time.Kitchen), msg.SenderID, msg.Text, marker)
	}
}
