package ldb

import "github.com/syndtr/goleveldb/leveldb/opt"

var (
	defaultOptions = opt.Options{
		Compression:            opt.NoCompression,
		BlockCacheCapacity:     256 * opt.MiB,
		WriteBuffer:            128 * opt.MiB,
		DisableSeeksCompaction: true,
	}

	// Options is a function that returns a leveldb
	// opt.Options struct for opening a database.
	// It's defined as a variable for the sake of testing.
	Options = func() *opt.Options {
		return &defaultOptions
	}

	defaultWriteOptions = opt.WriteOptions{
		// Whether commits must reach disk before they are acknowledged
		// is a deployment policy decision. The default mirrors the
		// asynchronous writes the node has always used; deployments
		// that prefer durability over throughput flip this.
		Sync: false,
	}

	// WriteOptions is a function that returns the leveldb
	// opt.WriteOptions used for every write and batch commit.
	// It's defined as a variable so deployments can make
	// commits durable without touching call sites.
	WriteOptions = func() *opt.WriteOptions {
		return &defaultWriteOptions
	}
)
