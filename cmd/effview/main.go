package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
	"golang.org/x/term"

	ieeffects "github.com/wippyai/ie-effects"
	"github.com/wippyai/ie-effects/container"
	"github.com/wippyai/ie-effects/decoder"
	"github.com/wippyai/ie-effects/engine"
	"github.com/wippyai/ie-effects/ids"
	"github.com/wippyai/ie-effects/layout"
	"github.com/wippyai/ie-effects/opcode"
	"github.com/wippyai/ie-effects/profile"
)

func main() {
	var (
		file        = flag.String("file", "", "Path to an EFF, ITM, SPL or CRE file, or a bare effect record")
		game        = flag.String("game", "", "Game preset ("+strings.Join(engine.PresetNames(), ", ")+")")
		profilePath = flag.String("profile", "", "INI game profile (overrides -game)")
		record      = flag.Int("record", -1, "Record index to show (default all)")
		asJSON      = flag.Bool("json", false, "Print decoded records as JSON")
		dump        = flag.Bool("dump", false, "Dump decoded record structures")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: effview -file <file> [-game bg2ee | -profile game.ini] [-record n]")
		fmt.Fprintln(os.Stderr, "       effview -file <file> -json|-dump")
		fmt.Fprintln(os.Stderr, "       effview -file <file> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		if err := setupLogging(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	s, err := open(*file, *game, *profilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(s, *record, *asJSON, *dump); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging() error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	opcode.SetLogger(log.Named("opcode"))
	decoder.SetLogger(log.Named("decoder"))
	profile.SetLogger(log.Named("profile"))
	ids.SetLogger(log.Named("ids"))
	return nil
}

// session is one opened file with everything needed to decode it.
type session struct {
	path    string
	file    *container.File
	manager *profile.Manager
	dec     *decoder.Decoder
}

func (s *session) context() engine.Context {
	return s.manager.Context()
}

func open(path, game, profilePath string) (*session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	f, err := locate(data)
	if err != nil {
		return nil, fmt.Errorf("locate records: %w", err)
	}

	p, err := chooseProfile(f, game, profilePath)
	if err != nil {
		return nil, err
	}

	var sym ieeffects.Symbols = ids.Default()
	if p.IDSDir != "" {
		set := ids.NewSet()
		for _, name := range ids.Default().Names() {
			if idsFile, ok := ids.Default().File(name); ok {
				set.Add(idsFile)
			}
		}
		if err := set.Load(os.DirFS(p.IDSDir), "."); err != nil {
			return nil, fmt.Errorf("load IDS files: %w", err)
		}
		sym = set
	}

	reg := opcode.Default()
	m := profile.NewManager(reg, nil)
	m.Switch(p)
	if err := reg.Err(); err != nil {
		return nil, fmt.Errorf("opcode tables: %w", err)
	}

	return &session{
		path:    path,
		file:    f,
		manager: m,
		dec:     decoder.New(decoder.Options{Registry: reg, Symbols: sym}),
	}, nil
}

// locate treats a file without a known signature as one bare record when
// its size matches a record layout.
func locate(data []byte) (*container.File, error) {
	f, err := container.Parse(data)
	if err == nil {
		return f, nil
	}
	if len(data) == layout.CompactMinSize || len(data) == layout.ExtendedMinSize {
		return &container.File{
			Kind:    "record",
			Data:    data,
			Records: []container.Ref{{Block: "record", Size: len(data)}},
		}, nil
	}
	return nil, err
}

func chooseProfile(f *container.File, game, profilePath string) (*profile.Profile, error) {
	if profilePath != "" {
		p, err := profile.Load(profilePath)
		if err != nil {
			return nil, fmt.Errorf("profile: %w", err)
		}
		return p, nil
	}
	if game != "" {
		ctx, ok := engine.Preset(game)
		if !ok {
			return nil, fmt.Errorf("unknown game %q, want one of %s", game, strings.Join(engine.PresetNames(), ", "))
		}
		return &profile.Profile{Name: game, Context: ctx}, nil
	}
	if fam, ok := f.Family(); ok {
		ctx := engine.New(fam)
		return &profile.Profile{Name: ctx.String(), Context: ctx}, nil
	}
	ctx, _ := engine.Preset("bg2")
	return &profile.Profile{Name: "bg2", Context: ctx}, nil
}

func (s *session) decode(i int) (*decoder.Record, error) {
	r := s.file.Records[i]
	rec, err := s.dec.DecodeAt(s.context(), s.file.Data, r.Base, r.Size)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", i, err)
	}
	return rec, nil
}

func run(s *session, only int, asJSON, dump bool) error {
	if only >= len(s.file.Records) {
		return fmt.Errorf("record %d out of range, file has %d", only, len(s.file.Records))
	}

	styled := !asJSON && !dump && term.IsTerminal(int(os.Stdout.Fd()))
	var views []recordView
	for i := range s.file.Records {
		if only >= 0 && i != only {
			continue
		}
		rec, err := s.decode(i)
		if err != nil {
			return err
		}
		switch {
		case dump:
			dumper.Fdump(os.Stdout, rec)
		case asJSON:
			views = append(views, newRecordView(i, s.file.Records[i].Block, rec))
		default:
			fmt.Print(renderRecord(i, s.file.Records[i].Block, rec, styled, nil))
			fmt.Println()
		}
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(views); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}
	return nil
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}
