package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"studyzone_backend/internal/client"
	"studyzone_backend/internal/logger"
	"studyzone_backend/internal/models"
)

// views maps the screens the CLI can open to the roles allowed in.
var views = map[string][]models.Role{
	"dashboard": {models.RoleUser, models.RoleMentor, models.RoleAdmin, models.RoleSupport},
	"mentor":    {models.RoleMentor, models.RoleAdmin},
	"admin":     {models.RoleAdmin},
	"support":   {models.RoleSupport, models.RoleAdmin},
}

func main() {
	serverURL := flag.String("server", envOr("STUDYZONE_SERVER", "http://localhost:8080"), "API base URL")
	cachePath := flag.String("cache", "", "session cache file (defaults to the user config dir)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] login | open <view> | logout\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger.Init("development")

	path := *cachePath
	if path == "" {
		var err error
		if path, err = client.DefaultCachePath(); err != nil {
			logger.Fatal("Cannot resolve session cache path", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache := client.NewCache(path)
	api := client.NewAPIClient(*serverURL, 10*time.Second)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "login":
		err = login(ctx, api, cache)
	case "open":
		if len(args) < 2 {
			flag.Usage()
			os.Exit(2)
		}
		err = open(ctx, client.NewGuard(cache, api), args[1])
	case "logout":
		err = cache.Clear()
		if err == nil {
			fmt.Println("Logged out")
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func login(ctx context.Context, api *client.APIClient, cache *client.Cache) error {
	fmt.Print("Email: ")
	email, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return err
	}
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return err
	}

	resp, err := api.Login(ctx, strings.TrimSpace(email), string(password))
	if err != nil {
		return err
	}
	user := resp.User
	if err := cache.Save(&client.Session{Token: resp.Token, User: &user}); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s %v\n", user.Email, user.Roles)
	return nil
}

func open(ctx context.Context, guard *client.Guard, view string) error {
	allowed, ok := views[view]
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}
	d := guard.Check(ctx, allowed...)
	if !d.Allow {
		fmt.Printf("Redirected to %s\n", d.Redirect)
		return nil
	}
	fmt.Printf("Opened %s\n", view)
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
