package cli

import (
	"bufio"
	"context"
	"log"
	"os"
)

func (a *App) Root() {

	log.Println("Welcome to the exam CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	runREPL(context.Background(), a, a.getStatus, scanner)
}
