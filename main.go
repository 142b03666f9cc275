/*
Copyright © 2025 tieubaoca
*/
package main

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/tieubaoca/chatwidget/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("Error loading .env file: " + err.Error())
	}
}
