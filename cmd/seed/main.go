package main

import (
	"log"
	"os"

	"github.com/Mtank10/career-counselling-chat-app/internal/model"
	"github.com/Mtank10/career-counselling-chat-app/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding demo data...")

	// Demo user
	var existing model.User
	if err := db.Where("email = ?", "demo@example.com").First(&existing).Error; err == nil {
		color.Yellow("Demo user already exists, skipping...")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Error: Failed to hash password:", err)
	}
	hashStr := string(hash)

	user := model.User{
		Id:           uuid.New(),
		Email:        "demo@example.com",
		PasswordHash: &hashStr,
		FullName:     "Demo User",
	}
	if err := db.Create(&user).Error; err != nil {
		color.Red("Failed to create demo user: %v", err)
		os.Exit(1)
	}
	color.Green("Created user: %s (password: password123)", user.Email)

	// Demo session with a short exchange
	session := model.ChatSession{
		Id:     uuid.New(),
		UserId: user.Id,
		Title:  "How do I switch into software engine...",
	}
	if err := db.Create(&session).Error; err != nil {
		color.Red("Failed to create demo session: %v", err)
		os.Exit(1)
	}

	turns := []model.ChatTurn{
		{
			Id:             uuid.New(),
			ChatSessionId:  session.Id,
			Role:           "user",
			Content:        "How do I switch into software engineering from accounting?",
			SequenceNumber: 1,
		},
		{
			Id:             uuid.New(),
			ChatSessionId:  session.Id,
			Role:           "assistant",
			Content:        "Switching from accounting to software engineering is very achievable. Start by identifying which transferable skills you already have, then build a learning plan around a single language and a portfolio of small projects.",
			SequenceNumber: 2,
		},
	}
	for _, t := range turns {
		if err := db.Create(&t).Error; err != nil {
			color.Red("Failed to create demo turn: %v", err)
			os.Exit(1)
		}
	}

	color.Green("Created session %s with %d turns", session.Id, len(turns))
	color.Cyan("Seeding completed!")
}
