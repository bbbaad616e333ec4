package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/skytour/internal/clock"
	"github.com/ivlev/skytour/internal/config"
	"github.com/ivlev/skytour/internal/coords"
	"github.com/ivlev/skytour/internal/countdown"
	"github.com/ivlev/skytour/internal/engine"
	"github.com/ivlev/skytour/internal/share"
	"github.com/ivlev/skytour/internal/source"
	"github.com/ivlev/skytour/internal/system"
	"github.com/ivlev/skytour/internal/tour"
	"github.com/ivlev/skytour/internal/viewer"
)

var buildVersion = "dev"

const redrawPeriod = 50 * time.Millisecond

func main() {
	configPtr := flag.String("config", "", "Путь к YAML-конфигурации (по умолчанию встроенные значения)")
	tourPtr := flag.String("tour", "", "Путь к описанию тура .yaml/.json (по умолчанию: самый свежий файл в input/tours/)")
	baseURLPtr := flag.String("base-url", "", "Базовый URL для относительных путей к изображениям")
	speedPtr := flag.Float64("speed", 1, "Скорость воспроизведения (1, 2, 4...)")
	loopPtr := flag.Bool("loop", true, "Зациклить тур")
	anchorPtr := flag.String("anchor", "", "Якорь точки для старта, например orion-nebula")
	tuiPtr := flag.Bool("tui", true, "Терминальный просмотрщик (false - только журнал)")
	playPtr := flag.Bool("play", false, "Сразу начать воспроизведение")
	sharePtr := flag.String("share", "", "Базовая ссылка для шаринга")
	qrPtr := flag.String("share-qr", "", "Сохранить QR-код ссылки на последнюю точку в PNG")
	statsPtr := flag.Bool("stats", false, "Показать отчёт о сессии")
	durationPtr := flag.Duration("duration", 0, "Остановиться через заданное время (0 - до выхода)")
	exportPtr := flag.String("export", "", "Сохранить подготовленный тур в YAML и выйти")

	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка конфигурации: %v", err)
		}
		cfg = loaded
	}

	// флаги, заданные явно, важнее файла
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tour":
			cfg.TourPath = *tourPtr
		case "base-url":
			cfg.BaseURL = *baseURLPtr
		case "speed":
			cfg.Speed = *speedPtr
		case "loop":
			cfg.Loop = *loopPtr
		case "share":
			cfg.ShareBase = *sharePtr
		case "stats":
			cfg.ShowStats = *statsPtr
		}
	})
	cfg.BuildVersion = buildVersion
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка параметров: %v", err)
	}

	os.MkdirAll(cfg.ToursDir, 0755)

	if cfg.TourPath == "" {
		latest, err := tour.FindLatestTour(cfg.ToursDir)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите описание тура в %s/", err, cfg.ToursDir)
		}
		cfg.TourPath = latest
		fmt.Printf("[*] Выбран тур: %s\n", cfg.TourPath)
	}

	t, err := tour.Load(cfg.TourPath, cfg.BaseURL, coords.J2000{})
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	fmt.Printf("[*] Тур %q: %d точек\n", t.Title, t.Len())

	if *exportPtr != "" {
		if err := tour.WriteTour(t, *exportPtr); err != nil {
			log.Fatalf("[-] Не удалось сохранить тур: %v", err)
		}
		fmt.Printf("[+++] Тур сохранён в %s\n", *exportPtr)
		return
	}

	for _, r := range source.ProbeTour(t, filepath.Dir(cfg.TourPath)) {
		fmt.Printf("[*] Растр: %s\n", r)
	}

	if *tuiPtr {
		f, err := os.OpenFile("skytour.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("[-] Не удалось открыть журнал: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if err := run(cfg, t, *anchorPtr, *tuiPtr, *playPtr, *durationPtr, *qrPtr); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
}

func run(cfg *config.Config, t *tour.Tour, anchor string, tui, play bool, limit time.Duration, qrPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if limit > 0 {
		var cancelLimit context.CancelFunc
		ctx, cancelLimit = context.WithTimeout(ctx, limit)
		defer cancelLimit()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := clock.NewLoop(64)
	ctl := engine.New(cfg, t, loop)
	first := t.At(0)

	var term *viewer.Terminal
	var screen tcell.Screen
	if tui {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("терминал недоступен: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("не удалось инициализировать терминал: %w", err)
		}
		term = viewer.NewTerminal(screen, first.FoV, first.Position())
		ctl.Attach(term, term)
		ctl.OnChange(func(engine.Status) {
			term.SetCaption(ctl.Waypoint().Title, ctl.Description())
		})
	} else {
		rec := viewer.NewRecorder(first.FoV, first.Position())
		rec.Verbose = true
		ctl.Attach(rec, &countdown.LogDisplay{})
		ctl.OnChange(func(s engine.Status) {
			log.Printf("[*] %s", statusLine(s))
		})
	}

	if err := ctl.Land(anchor); err != nil {
		return err
	}
	if cfg.ShareBase != "" {
		fmt.Printf("[*] Ссылка: %s\n", share.Link(cfg.ShareBase, ctl.ShareAnchor()))
	}
	if play {
		if err := ctl.Play(); err != nil {
			log.Printf("[!] %v", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := loop.Run(gctx)
		if screen != nil {
			screen.Fini()
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	})

	if term != nil {
		var redraw func()
		redraw = func() {
			term.SetStatus(statusLine(ctl.Status()))
			term.Draw()
			loop.AfterFunc(redrawPeriod, redraw)
		}
		loop.Post(redraw)

		g.Go(func() error {
			term.Poll(func(a viewer.Action) {
				if a.Cmd == viewer.CmdQuit {
					cancel()
					return
				}
				loop.Post(func() { handle(ctl, a) })
			})
			cancel()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("[+++] Тур остановлен на точке %d/%d: %s\n", ctl.Index()+1, ctl.Count(), ctl.Waypoint().Title)

	if qrPath != "" {
		link := share.Link(cfg.ShareBase, ctl.ShareAnchor())
		if err := share.WriteQR(link, qrPath, share.DefaultQRSize); err != nil {
			log.Printf("[!] %v", err)
		} else {
			fmt.Printf("[*] QR-код %s сохранён в %s\n", link, qrPath)
		}
	}

	if cfg.ShowStats {
		usage, err := system.CurrentUsage()
		if err != nil {
			log.Printf("[!] %v", err)
		}
		if err := ctl.Report(os.Stdout, usage, engine.ReportLog); err != nil {
			fmt.Printf("[!] %v\n", err)
		}
	}
	return nil
}

// handle runs on the loop goroutine.
func handle(ctl *engine.Controller, a viewer.Action) {
	var err error
	switch a.Cmd {
	case viewer.CmdTogglePlay:
		err = ctl.TogglePlay()
	case viewer.CmdPrev:
		err = ctl.Prev()
	case viewer.CmdNext:
		err = ctl.Next()
	case viewer.CmdReset:
		err = ctl.Reset()
	case viewer.CmdToggleLoop:
		err = ctl.SetLoop(!ctl.Loop())
	case viewer.CmdSpeed:
		err = ctl.SetSpeed(a.Speed)
	case viewer.CmdJump:
		err = ctl.JumpWithHistory(a.Index)
	case viewer.CmdSliderDown, viewer.CmdSliderUp:
		delta := 0.5
		if a.Cmd == viewer.CmdSliderDown {
			delta = -delta
		}
		var label string
		if label, err = ctl.SliderStep(delta); err == nil {
			log.Printf("[*] Слой: %s", label)
		}
	case viewer.CmdWavelengthDown, viewer.CmdWavelengthUp:
		delta := 1
		if a.Cmd == viewer.CmdWavelengthDown {
			delta = -1
		}
		_, err = ctl.WavelengthStep(delta)
	}
	if err != nil {
		log.Printf("[!] %v", err)
	}
}

func statusLine(s engine.Status) string {
	line := fmt.Sprintf("[%d/%d] %s x%g", s.Index+1, s.Count, s.State, s.Speed)
	if s.Loop {
		line += " loop"
	}
	if s.State == engine.Transitioning {
		line += " " + s.Phase.String()
	}
	return line + " #" + s.Anchor
}
