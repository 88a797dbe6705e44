// auctionctl is the admin CLI for provisioning and seeding the
// DynamoDB backend.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bidbazaar/auction-engine/pkg/config"
	"github.com/bidbazaar/auction-engine/pkg/models"
	"github.com/bidbazaar/auction-engine/pkg/storage/dynamo"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "auctionctl",
		Short: "Admin tooling for the marketplace auction engine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found, using environment variables")
			}
		},
	}
	root.AddCommand(createTablesCmd(), seedCmd())
	return root
}

func createTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-tables",
		Short: "Create the DynamoDB tables used by the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			client, err := dynamoClient(cmd.Context())
			if err != nil {
				return err
			}

			for _, spec := range dynamo.TableSpecs(cfg.ProductsTable, cfg.BidsTable, cfg.SalesTable, cfg.CountersTable) {
				if _, err := client.CreateTable(cmd.Context(), spec); err != nil {
					return fmt.Errorf("failed to create table %s: %w", *spec.TableName, err)
				}
				fmt.Printf("created table %s\n", *spec.TableName)
			}
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var (
		ownerID int64
		title   string
		reserve string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a sample open listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			client, err := dynamoClient(cmd.Context())
			if err != nil {
				return err
			}

			reservePrice, err := decimal.NewFromString(reserve)
			if err != nil {
				return fmt.Errorf("invalid reserve price %q: %w", reserve, err)
			}

			store := dynamo.New(client, cfg.ProductsTable, cfg.BidsTable, cfg.SalesTable, cfg.CountersTable)
			product, err := store.CreateProduct(cmd.Context(), &models.Product{
				OwnerID:      ownerID,
				Title:        title,
				ReservePrice: reservePrice,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created product %d (reserve %s)\n", product.ID, product.ReservePrice.String())
			return nil
		},
	}
	cmd.Flags().Int64Var(&ownerID, "owner", 1, "owner user id")
	cmd.Flags().StringVar(&title, "title", "Sample listing", "listing title")
	cmd.Flags().StringVar(&reserve, "reserve", "100.00", "reserve price")
	return cmd
}

func dynamoClient(ctx context.Context) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg), nil
}
