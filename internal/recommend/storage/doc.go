// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

// Package storage persists trained scoring model artifacts.
//
// Artifacts are gob-encoded, gzip-compressed and checksummed with SHA-256
// so a restart restores exactly the network that was serving before.
//
// # Storage Format
//
//	filename: {name}_v{version}.gob.gz
//
//	structure:
//	  - Info (FileInfo, including the artifact metadata)
//	  - CompressedData (gzip-compressed gob-encoded model.Artifact)
//
// Files are written to a temporary name and renamed into place.
//
// # Usage Example
//
//	store, err := storage.NewStore("/data/models", "scorer")
//	if err != nil {
//	    return err
//	}
//
//	meta.Version = store.NextVersion()
//	artifact, _ := model.NewArtifact(net, meta)
//	if err := store.Save(ctx, artifact); err != nil {
//	    return err
//	}
//	_, _ = store.Prune(ctx, 5)
//
// Store satisfies model.Loader, so startup restore is simply:
//
//	err := scoringModel.Load(ctx, store)
//
// # Thread Safety
//
// Store is safe for concurrent use within one process.
package storage
