package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	log "github.com/jensneuse/abstractlogger"
	"github.com/spf13/cobra"

	"github.com/unitecms/contentgraph/pkg/graphql"
	"github.com/unitecms/contentgraph/pkg/identity"
)

const cliKeyName = "cli"

var (
	queryText      string
	queryFile      string
	queryVariables string
	queryOperation string
	queryDomain    string
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "query runs a single query against the configured domains and prints the response",
	Example: `contentgraph query --domains marketing.json --fixtures content.json \
  --query '{ findNews { result { title category { name } } } }'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		request, err := queryRequest(cmd.InOrStdin())
		if err != nil {
			return err
		}

		registry, org, err := provision(s, s.Domains)
		if err != nil {
			return err
		}
		domain, err := pickDomain(org, queryDomain)
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(cmd.Context(), s, log.NoopLogger)
		if err != nil {
			return err
		}
		defer closeStore() // nolint

		engine, err := graphql.NewEngine(s.Engine, registry, store, log.NoopLogger)
		if err != nil {
			return err
		}

		// the command line acts as a member of the queried domain
		actor := &identity.APIKey{KeyName: cliKeyName, KeyOrganization: org.Identifier}
		actor.AddDomain(domain.Identifier, "editor")
		reqCtx := identity.Context{Organization: org, Domain: domain, Actor: actor}

		out := &bytes.Buffer{}
		if _, err := engine.Execute(cmd.Context(), reqCtx, request, out); err != nil {
			return err
		}
		pretty := &bytes.Buffer{}
		if err := json.Indent(pretty, out.Bytes(), "", "  "); err != nil {
			return err
		}
		pretty.WriteByte('\n')
		_, err = pretty.WriteTo(cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	flags := queryCmd.Flags()
	flags.StringVarP(&queryText, "query", "q", "", "query text")
	flags.StringVarP(&queryFile, "file", "f", "", "file with the query text, - reads std in")
	flags.StringVar(&queryVariables, "variables", "", "variables as JSON object")
	flags.StringVar(&queryOperation, "operation", "", "name of the operation to run")
	flags.StringVar(&queryDomain, "domain", "", "domain to query, defaults to the first document")
}

func queryRequest(stdin io.Reader) (*graphql.Request, error) {
	request := &graphql.Request{
		OperationName: queryOperation,
		Query:         queryText,
	}
	if queryVariables != "" {
		request.Variables = json.RawMessage(queryVariables)
	}

	switch {
	case queryText != "" && queryFile != "":
		return nil, fmt.Errorf("query: --query and --file are exclusive")
	case queryFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		request.Query = string(data)
	case queryFile != "":
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return nil, err
		}
		request.Query = string(data)
	}
	if request.Query == "" {
		return nil, fmt.Errorf("query: no query given")
	}
	return request, nil
}
