package main

import (
	"fmt"
	"log"

	"github.com/hostelhub/hostel-backend/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("JWT Secret Generator for the hostel backend")
	fmt.Println("===========================================")
	fmt.Println()

	names := []string{"JWT_SECRET", "JWT_REFRESH_SECRET"}
	secrets, err := utils.GenerateSecrets(names...)
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("Secrets generated. Add these to your .env file:")
	fmt.Println()
	for _, name := range names {
		fmt.Printf("%s=%s\n", name, secrets[name])
	}
	fmt.Println()
	fmt.Println("Keep these secrets safe and never commit them to version control.")
	fmt.Println("===========================================")
}
