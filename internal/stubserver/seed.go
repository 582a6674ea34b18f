package stubserver

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/taskdeck/taskdeck/internal/task"
)

//go:embed seed.schema.json
var seedSchema string

type seedFile struct {
	Accounts []seedAccount `json:"accounts"`
	Tasks    []seedTask    `json:"tasks"`
}

type seedAccount struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type seedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      int    `json:"status"`
	DueDate     string `json:"dueDate"`
	UserName    string `json:"userName"`
}

// LoadSeed reads a seed file, validates it against the embedded schema
// and loads its accounts and tasks into the store. Seed tasks are
// inserted in file order, so the first task in the file ends up newest.
func LoadSeed(store *Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	if err := validateSeed(data); err != nil {
		return fmt.Errorf("seed file %s: %w", path, err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}

	for _, a := range seed.Accounts {
		if err := store.AddAccount(a.Email, a.Password, a.Name); err != nil {
			return fmt.Errorf("seed account %s: %w", a.Email, err)
		}
	}

	// Reverse so the file's first task is inserted last and stays at
	// the front of the list.
	for i := len(seed.Tasks) - 1; i >= 0; i-- {
		st := seed.Tasks[i]
		req := task.CreateRequest{
			Title:       st.Title,
			Description: st.Description,
		}
		if st.DueDate != "" {
			d, err := task.ParseDate(st.DueDate)
			if err != nil {
				return fmt.Errorf("seed task %q: %w", st.Title, err)
			}
			req.DueDate = &d
		}
		userName := st.UserName
		if userName == "" {
			userName = DefaultName
		}
		store.SeedTask(req, task.Status(st.Status), userName)
	}

	return nil
}

// validateSeed checks the raw document against the embedded JSON
// schema and flattens the error into readable lines.
func validateSeed(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("seed.schema.json", strings.NewReader(seedSchema)); err != nil {
		return fmt.Errorf("load seed schema: %w", err)
	}
	schema, err := compiler.Compile("seed.schema.json")
	if err != nil {
		return fmt.Errorf("compile seed schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return err
		}
		var lines []string
		collectSchemaErrors(ve, &lines)
		return fmt.Errorf("invalid seed file:\n  %s", strings.Join(lines, "\n  "))
	}
	return nil
}

func collectSchemaErrors(err *jsonschema.ValidationError, lines *[]string) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*lines = append(*lines, fmt.Sprintf("%s: %s", loc, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, lines)
	}
}
