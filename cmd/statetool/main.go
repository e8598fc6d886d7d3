package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/qurulab/Waves/domain/state"
	"github.com/qurulab/Waves/infrastructure/db/database"
)

func main() {
	cfg, args, err := parseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	stateDB, err := state.Open(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening the state database at %s: %s\n",
			cfg.DataDir, err)
		os.Exit(1)
	}
	defer func() {
		err := stateDB.Close()
		if err != nil {
			log.Errorf("Failed to close the state database: %s", err)
		}
	}()

	err = runCommand(stateDB, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runCommand(stateDB *state.DB, args []string) error {
	switch args[0] {
	case "status":
		return printStatus(stateDB)
	case "block":
		height, err := parseHeightArg(args)
		if err != nil {
			return err
		}
		return printBlock(stateDB, height)
	case "rollback":
		height, err := parseHeightArg(args)
		if err != nil {
			return err
		}
		return rollback(stateDB, height)
	case "dump":
		if len(args) < 2 {
			return errors.New("dump requires a tag byte, e.g. dump 0x03")
		}
		tag, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			return errors.Wrapf(err, "invalid tag byte %q", args[1])
		}
		return dumpTag(stateDB, byte(tag))
	default:
		return errors.Errorf("unrecognized command %q, see --help", args[0])
	}
}

func parseHeightArg(args []string) (uint32, error) {
	if len(args) < 2 {
		return 0, errors.Errorf("%s requires a height argument", args[0])
	}
	height, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid height %q", args[1])
	}
	return uint32(height), nil
}

func printStatus(stateDB *state.DB) error {
	return stateDB.View(func(accessor database.DataAccessor) error {
		height, err := state.Height(accessor)
		if err != nil {
			return err
		}
		fmt.Printf("Height: %d\n", height)
		if height == 0 {
			return nil
		}
		score, err := state.ScoreAt(accessor, height)
		if err != nil {
			return err
		}
		fmt.Printf("Score: %s\n", score)
		meta, err := state.BlockMetaByHeight(accessor, height)
		if err != nil {
			return err
		}
		fmt.Printf("Tip block: %s\n", meta.Signature)
		return nil
	})
}

func printBlock(stateDB *state.DB, height uint32) error {
	return stateDB.View(func(accessor database.DataAccessor) error {
		meta, err := state.BlockMetaByHeight(accessor, height)
		if err != nil {
			return err
		}
		fmt.Printf("Signature: %s\n", meta.Signature)
		if meta.HeaderHash != nil {
			fmt.Printf("Header hash: %s\n", meta.HeaderHash)
		}
		fmt.Printf("Height: %d\n", meta.Height)
		fmt.Printf("Size: %d\n", meta.Size)
		fmt.Printf("Transactions: %d\n", meta.TxCount)
		fmt.Printf("Total fee: %d\n", meta.TotalFee)
		if meta.Reward != nil {
			fmt.Printf("Reward: %d\n", *meta.Reward)
		}
		if meta.VRF != nil {
			fmt.Printf("VRF: %s\n", meta.VRF)
		}
		txIDs, err := state.BlockTransactionsAt(accessor, height)
		if err != nil {
			return err
		}
		for _, txID := range txIDs {
			fmt.Printf("  tx %s\n", txID)
		}
		return nil
	})
}

func rollback(stateDB *state.DB, height uint32) error {
	err := stateDB.Update(func(rw database.DataWriter) error {
		return state.RollbackToHeight(rw, height)
	})
	if err != nil {
		return err
	}
	fmt.Printf("Rolled back to height %d\n", height)
	return nil
}

func dumpTag(stateDB *state.DB, tag byte) error {
	return stateDB.View(func(accessor database.DataAccessor) error {
		cursor, err := accessor.Cursor([]byte{tag})
		if err != nil {
			return err
		}
		defer func() {
			err := cursor.Close()
			if err != nil {
				log.Errorf("Failed to close the dump cursor: %s", err)
			}
		}()
		count := 0
		for cursor.Next() {
			key, err := cursor.Key()
			if err != nil {
				return err
			}
			value, err := cursor.Value()
			if err != nil {
				return err
			}
			fmt.Printf("%x (%d value bytes)\n", key, len(value))
			count++
		}
		fmt.Printf("%d keys under tag 0x%02x\n", count, tag)
		return nil
	})
}
