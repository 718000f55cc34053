package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/liliang-cn/docmirror/pkg/core"
	"github.com/liliang-cn/docmirror/pkg/docmirror"
	"github.com/liliang-cn/docmirror/pkg/model"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docmirror",
	Short: "CLI tool for the local remote-document mirror",
	Long:  `A command-line interface for inspecting and editing the local SQLite mirror of remote documents.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new document mirror database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("Document mirror initialized at %s\n", dbPath)
		return nil
	},
}

var putCmd = &cobra.Command{
	Use:   "put <collection/doc> [more path segments...]",
	Short: "Store a document state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, _ := cmd.Flags().GetString("data")

		key, err := parseKeyArg(args[0])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		doc := model.NewDocument(key, model.VersionFromTime(time.Now()), []byte(data))
		if err := db.Cache().Add(context.Background(), doc); err != nil {
			return fmt.Errorf("failed to store document: %w", err)
		}

		fmt.Printf("Document '%s' stored\n", key)
		return nil
	},
}

var tombstoneCmd = &cobra.Command{
	Use:   "tombstone <collection/doc>",
	Short: "Record that a document is known not to exist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseKeyArg(args[0])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		doc := model.NewNoDocument(key, model.VersionFromTime(time.Now()))
		if err := db.Cache().Add(context.Background(), doc); err != nil {
			return fmt.Errorf("failed to store tombstone: %w", err)
		}

		fmt.Printf("Tombstone for '%s' stored\n", key)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <collection/doc>",
	Short: "Look up a document state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseKeyArg(args[0])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		state, err := db.Cache().Get(context.Background(), key)
		if err != nil {
			return fmt.Errorf("failed to look up document: %w", err)
		}
		if state == nil {
			fmt.Printf("No record for '%s'\n", key)
			return nil
		}

		printState(state)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <collection/doc>",
	Short: "Remove a document record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := parseKeyArg(args[0])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Cache().Remove(context.Background(), key); err != nil {
			return fmt.Errorf("failed to remove document: %w", err)
		}

		fmt.Printf("Record for '%s' removed\n", key)
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls <collection>",
	Short: "List existing documents directly inside a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := model.ParsePath(args[0])
		if err != nil {
			return fmt.Errorf("invalid collection path: %w", err)
		}
		if path.Length()%2 == 0 {
			return fmt.Errorf("'%s' names a document, not a collection", args[0])
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		docs, err := db.Cache().GetAllMatchingQuery(context.Background(), model.NewQuery(path))
		if err != nil {
			return fmt.Errorf("failed to query collection: %w", err)
		}

		if docs.Len() == 0 {
			fmt.Printf("No documents in '%s'\n", args[0])
			return nil
		}
		for _, doc := range docs.Documents() {
			fmt.Printf("%s\t%s\t%d bytes\n", doc.Key(), doc.Version().Time().Format(time.RFC3339), len(doc.Fields()))
		}
		return nil
	},
}

func parseKeyArg(arg string) (model.DocumentKey, error) {
	key, err := model.ParseKey(arg)
	if err != nil {
		return model.DocumentKey{}, fmt.Errorf("invalid document key: %w", err)
	}
	return key, nil
}

func printState(state model.MaybeDocument) {
	switch doc := state.(type) {
	case *model.Document:
		fmt.Printf("Document %s (version %s)\n", doc.Key(), doc.Version().Time().Format(time.RFC3339))
		if doc.HasCommittedMutations() {
			fmt.Println("  has committed mutations")
		}
		fmt.Printf("  %s\n", doc.Fields())
	case *model.NoDocument:
		fmt.Printf("Tombstone %s (known absent as of %s)\n", doc.Key(), doc.Version().Time().Format(time.RFC3339))
	case *model.UnknownDocument:
		fmt.Printf("Unknown state %s (as of %s)\n", doc.Key(), doc.Version().Time().Format(time.RFC3339))
	}
}

func openDB() (*docmirror.DB, error) {
	config := docmirror.DefaultConfig(dbPath)
	if verbose {
		config.Logger = core.NewStdLogger(core.LevelDebug)
	}

	db, err := docmirror.Open(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "docmirror.db", "database file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	putCmd.Flags().String("data", "", "opaque document payload")

	rootCmd.AddCommand(initCmd, putCmd, tombstoneCmd, getCmd, rmCmd, lsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.SetFlags(0)
		log.Println(err)
		os.Exit(1)
	}
}
