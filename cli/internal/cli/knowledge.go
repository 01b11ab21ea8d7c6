package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/makima-ai/makima-go/pkg/client/api"
)

func KnowledgeDocsCmd(ctx context.Context, rt *Runtime, name string) error {
	docs, err := rt.Client.Knowledge.ListDocuments(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get documents of knowledge base %s: %w", name, err)
	}
	if len(docs) == 0 && rt.Config.OutputFormat != string(OutputFormatJSON) {
		fmt.Fprintln(rt.Out, "No documents found") //nolint:errcheck
		return nil
	}
	return printDocuments(rt, docs)
}

// KnowledgeAddDocCmd adds the documents of a YAML or JSON file. The file holds
// one document or a list of them.
func KnowledgeAddDocCmd(ctx context.Context, rt *Runtime, name, file string) error {
	documents, err := readDocuments(file)
	if err != nil {
		return err
	}

	stop := rt.spin(fmt.Sprintf("Adding %d document(s)...", len(documents)))
	added, err := rt.Client.Knowledge.AddDocuments(ctx, name, documents)
	stop()
	if len(added) > 0 {
		if printErr := printDocuments(rt, added); printErr != nil {
			return printErr
		}
	}
	return err
}

func readDocuments(file string) ([]api.DocumentParams, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}

	var documents []api.DocumentParams
	if trimmed := bytes.TrimSpace(jsonData); len(trimmed) > 0 && trimmed[0] == '[' {
		err = yaml.Unmarshal(data, &documents)
	} else {
		var document api.DocumentParams
		err = yaml.Unmarshal(data, &document)
		documents = append(documents, document)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}
	return documents, nil
}

func KnowledgeSearchCmd(ctx context.Context, rt *Runtime, name string, search *api.SearchRequest) error {
	results, err := rt.Client.Knowledge.Search(ctx, name, search)
	if err != nil {
		return fmt.Errorf("failed to search knowledge base %s: %w", name, err)
	}

	headers := []string{"#", "ID", "SIMILARITY", "MODEL", "CONTENT"}
	rows := make([][]string, len(results))
	for i, result := range results {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			result.ID,
			strconv.FormatFloat(result.Similarity, 'f', 3, 64),
			result.Model,
			truncate(result.Content, 60),
		}
	}
	return printOutput(rt.Out, rt.Config.OutputFormat, results, headers, rows)
}

func printDocuments(rt *Runtime, docs []api.Document) error {
	headers := []string{"#", "ID", "MODEL", "CONTENT", "CREATED"}
	rows := make([][]string, len(docs))
	for i, doc := range docs {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			doc.ID,
			doc.Model,
			truncate(doc.Content, 60),
			doc.CreatedAt.Format(time.RFC3339),
		}
	}
	return printOutput(rt.Out, rt.Config.OutputFormat, docs, headers, rows)
}
