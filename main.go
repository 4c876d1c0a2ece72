package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"interviewer-ai/internal/cli"
)

func main() {
	// Загружаем переменные окружения; отсутствие .env не ошибка —
	// все настройки имеют значения по умолчанию
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Ошибка загрузки .env файла: %v", err)
	}

	cli.Execute()
}
