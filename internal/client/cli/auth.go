package cli

import (
	"context"
	"log"
	"os"
)

func (a *App) Register(ctx context.Context) error {

	userName, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.api.Register(ctx, userName, string(password)); err != nil {
		a.reportError(err)
		return err
	}

	log.Println("Registered. You can log in now.")
	return nil
}

func (a *App) Login(ctx context.Context) error {

	userName, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	result, err := a.api.Login(ctx, userName, string(password))
	if err != nil {
		a.reportError(err)
		return err
	}

	a.userName = result.Username
	a.role = result.Role
	log.Printf("Logged in as %s (%s)", result.Username, result.Role)
	return nil
}

func (a *App) Logout(ctx context.Context) error {

	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return nil
	}

	if err := a.api.Logout(ctx); err != nil {
		a.reportError(err)
		return err
	}

	a.userName = ""
	a.role = ""
	log.Println("Logged out")
	return nil
}
