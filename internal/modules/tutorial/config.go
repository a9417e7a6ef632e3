package tutorial

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// Messages are the fixed user-facing texts. {max} is replaced by the last step number.
type Messages struct {
	Welcome            string `yaml:"welcome"`
	Completed          string `yaml:"completed"`
	AlreadyFinished    string `yaml:"already_finished"`
	OutOfRange         string `yaml:"out_of_range"`
	MissingStep        string `yaml:"missing_step"`
	Restart            string `yaml:"restart"`
	ContentNotFound    string `yaml:"content_not_found"`
	ContentUnavailable string `yaml:"content_unavailable"`
	NoAnswer           string `yaml:"no_answer"`
	Failure            string `yaml:"failure"`
	Unsupported        string `yaml:"unsupported"`
}

func DefaultMessages() Messages {
	return Messages{
		Welcome:            "Te voy a enseñar paso a paso a crear un chatbot. Puedes ir a un paso concreto o hacerme preguntas en cualquier momento. ¿Empezamos?",
		Completed:          "Enhorabuena, has creado un chatbot",
		AlreadyFinished:    "Ya has completado el tutorial. Pide empezar el tutorial para comenzar de nuevo.",
		OutOfRange:         "Lo siento, el paso especificado no es válido. Por favor, elige un paso entre 1 y {max}.",
		MissingStep:        "Indica el número del paso al que quieres ir, entre 1 y {max}.",
		Restart:            "No he podido recuperar tu progreso en el tutorial. Pide empezar el tutorial para continuar.",
		ContentNotFound:    "No se encontró contenido para este paso y subpaso.",
		ContentUnavailable: "Ocurrió un error al obtener el contenido del paso.",
		NoAnswer:           "Lo siento, no tengo la respuesta a esa pregunta en este momento.",
		Failure:            "Lo siento, ocurrió un error al procesar tu solicitud.",
		Unsupported:        "No puedo manejar esa solicitud en este momento.",
	}
}

// withDefaults fills empty fields from DefaultMessages.
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&m.Welcome, d.Welcome)
	fill(&m.Completed, d.Completed)
	fill(&m.AlreadyFinished, d.AlreadyFinished)
	fill(&m.OutOfRange, d.OutOfRange)
	fill(&m.MissingStep, d.MissingStep)
	fill(&m.Restart, d.Restart)
	fill(&m.ContentNotFound, d.ContentNotFound)
	fill(&m.ContentUnavailable, d.ContentUnavailable)
	fill(&m.NoAnswer, d.NoAnswer)
	fill(&m.Failure, d.Failure)
	fill(&m.Unsupported, d.Unsupported)
	return m
}

func (m Messages) WithMax(msg string, max int) string {
	return strings.ReplaceAll(msg, "{max}", strconv.Itoa(max))
}

// Config is one tutorial deployment: its curriculum, how content is
// delivered, which platform intents map to what, and the fixed messages.
type Config struct {
	Name          string      `yaml:"name"`
	FetchMode     string      `yaml:"fetch_mode"`
	ContentFolder string      `yaml:"content_folder"`
	Curriculum    map[int]int `yaml:"curriculum"`
	Intents       IntentTable `yaml:"intents"`
	Messages      Messages    `yaml:"messages"`
}

// LoadConfig reads a YAML config from path. An empty path or a missing
// file falls back to the embedded default.
func LoadConfig(path string) (Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ParseConfig(defaultConfigYAML)
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ParseConfig(defaultConfigYAML)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read tutorial config %s: %w", path, err)
	}
	return ParseConfig(raw)
}

func ParseConfig(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse tutorial config: %w", err)
	}
	def := DefaultIntentTable()
	if cfg.Intents.Start == "" {
		cfg.Intents.Start = def.Start
	}
	if cfg.Intents.Next == "" {
		cfg.Intents.Next = def.Next
	}
	if cfg.Intents.Repeat == "" {
		cfg.Intents.Repeat = def.Repeat
	}
	if cfg.Intents.GoTo == "" {
		cfg.Intents.GoTo = def.GoTo
	}
	cfg.Messages = cfg.Messages.withDefaults()
	if _, err := ParseFetchMode(cfg.FetchMode); err != nil {
		return Config{}, err
	}
	if _, err := NewCurriculum(cfg.Curriculum); err != nil {
		return Config{}, fmt.Errorf("tutorial config %q: %w", cfg.Name, err)
	}
	return cfg, nil
}

// Navigator builds the navigator described by the config.
func (c Config) Navigator() (*Navigator, error) {
	mode, err := ParseFetchMode(c.FetchMode)
	if err != nil {
		return nil, err
	}
	cur, err := NewCurriculum(c.Curriculum)
	if err != nil {
		return nil, err
	}
	return NewNavigator(cur, mode), nil
}
