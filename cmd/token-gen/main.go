package main

import (
	"fmt"
	"log"
	"os"

	"equi-cloud.backend/pkg/identity"
)

var (
	printfFn = fmt.Printf
	fatalfFn = log.Fatalf
)

func resolveUserID(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("usage: token-gen <discord-user-id>")
	}
	return args[0], nil
}

func main() {
	userID, err := resolveUserID(os.Args[1:])
	if err != nil {
		fatalfFn("%v", err)
		return
	}

	printfFn("User ID:     %s\n", userID)
	printfFn("Secret:      %s\n", identity.Secret(userID))
	printfFn("Token:       %s\n", identity.EncodeToken(userID))
	printfFn("Current key: %s\n", identity.CurrentKey(userID))
	printfFn("Legacy key:  %s\n", identity.LegacyKey(userID))
}
