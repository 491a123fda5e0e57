// Команда ftdemo демонстрирует жизненный цикл HTTP файловой сессии:
// создание исходящей передачи, трансляцию событий движка наблюдателю и
// завершение сессии.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Jayranbutong/rcsjta/pkg/contact"
	"github.com/Jayranbutong/rcsjta/pkg/content"
	"github.com/Jayranbutong/rcsjta/pkg/filetransfer"
	"github.com/Jayranbutong/rcsjta/pkg/ftservice"
	"github.com/Jayranbutong/rcsjta/pkg/ims"
	"github.com/Jayranbutong/rcsjta/pkg/settings"
)

// demoEngine фиктивный HTTP движок для демонстрации
type demoEngine struct{}

func (demoEngine) PauseTransfer(id string) error {
	fmt.Printf("движок: пауза передачи %s\n", id)
	return nil
}

func (demoEngine) ResumeTransfer(id string) error {
	fmt.Printf("движок: возобновление передачи %s\n", id)
	return nil
}

func (demoEngine) CancelTransfer(id string) error {
	fmt.Printf("движок: прекращение передачи %s\n", id)
	return nil
}

// printListener выводит события сессии в консоль
type printListener struct{}

func (printListener) OnSessionStarted(c contact.ContactId) {
	fmt.Printf("сессия установлена: %s\n", c)
}

func (printListener) OnSessionAborted(c contact.ContactId, reason ims.TerminationReason) {
	fmt.Printf("сессия завершена: %s, причина %s\n", c, reason)
}

func (printListener) OnTransferProgress(c contact.ContactId, cur, total uint64) {
	fmt.Printf("передача: %d/%d байт\n", cur, total)
}

func (printListener) OnTransferNotAllowedToSend(c contact.ContactId) {
	fmt.Println("отправка запрещена")
}

func (printListener) OnFileTransferPausedByUser(c contact.ContactId) {
	fmt.Println("пауза по запросу пользователя")
}

func (printListener) OnFileTransferPausedBySystem(c contact.ContactId) {
	fmt.Println("пауза по инициативе системы")
}

func (printListener) OnFileTransferResumed(c contact.ContactId) {
	fmt.Println("передача возобновлена")
}

func (printListener) OnFileTransfered(ct content.MmContent, c contact.ContactId,
	fileExp, iconExp int64, protocol settings.FileTransferProtocol) {
	fmt.Printf("файл передан: %s по %s, валиден до %d\n", ct.Name(), protocol, fileExp)
}

func (printListener) OnTransferError(err *filetransfer.FileSharingError, c contact.ContactId) {
	fmt.Printf("ошибка передачи: %v\n", err)
}

func main() {
	var (
		configPath = flag.String("config", "", "Путь к TOML файлу настроек")
		remote     = flag.String("contact", "+79001234567", "Номер удаленного контакта")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	cfg := settings.Default()
	if *configPath != "" {
		loaded, err := settings.Load(*configPath)
		if err != nil {
			slog.Error("ошибка загрузки настроек", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	remoteContact, err := contact.NewContactId(*remote)
	if err != nil {
		slog.Error("недопустимый контакт", "error", err)
		os.Exit(1)
	}

	svc := ftservice.NewService(cfg, demoEngine{}, nil, slog.Default())
	svc.AddListener(printListener{})

	fileContent, err := content.NewMmContent("https://content.example.org/f/demo", 1<<20, "image/jpeg", "demo.jpg")
	if err != nil {
		slog.Error("ошибка описания контента", "error", err)
		os.Exit(1)
	}

	ft, err := svc.TransferFile(ftservice.TransferRequest{
		Contact:        remoteContact,
		Content:        fileContent,
		ContributionID: "demo-chat",
		FileExpiration: 1000,
		IconExpiration: 2000,
	})
	if err != nil {
		slog.Error("ошибка запуска передачи", "error", err)
		os.Exit(1)
	}

	// Имитация событий HTTP движка
	session := ft.Session()
	session.OnHTTPTransferStarted()
	session.OnHTTPTransferProgress(256<<10, 1<<20)
	ft.Pause()
	session.OnHTTPTransferPausedByUser()
	ft.Resume()
	session.OnHTTPTransferResumed()
	session.OnHTTPTransferProgress(1<<20, 1<<20)
	session.HandleFileTransferred()

	fmt.Printf("активных сессий: %d\n", svc.Registry().Count())
}
