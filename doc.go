// Package wdk is the Web Data Kit. It turns very large streams of RDF
// statements, as extracted from web crawls, into per-entity records and
// aggregate statistics while holding only a bounded window of the stream in
// memory.
//
// A run is a pipeline of the stages listed below. Interfaces and basic
// implementations of each stage live in this package, and implementations
// which rely on other software live in sub-packages.
//
// 1. RawSource
//
//    A wdk.RawSource hands out input files one at a time: local files
//    (package file), S3 objects (package aws/s3). One file is typically one
//    crawl segment of gzipped N-Quads, gigabytes in size. A Kafka topic
//    (package kafka) can stand in for a single unbounded file.
//
// 2. StatementSource
//
//    A decoder (package nquads) turns the bytes of a file into a stream of
//    Statements. Malformed lines are logged and skipped. A bad line never
//    ends the stream.
//
// 3. Reader
//
//    The Reader keeps a window of recent statements indexed by subject.
//    Statements for one subject are scattered through the stream, so the
//    Reader waits until a statement has aged out of the head of the window
//    before handing it to a Handler, which can then resolve the subject's
//    entity from everything indexed so far. Nested blank nodes are merged
//    into their parent entity down to DepthLimit levels. Statements which
//    fall out of the window are gone for good.
//
// 4. Handler
//
//    Handlers are the aggregation sinks (package tablegen). They decide for
//    each statement whether it should trigger resolution, usually on
//    rdf:type, and fold resolved entities into TopK counters,
//    Distributions, co-occurrence matrices, or CSV rows.
//
// 5. Post-processing
//
//    Once every stream has ended, per-file results are merged, and
//    FrequentItemsets mines maximal groups of co-occurring properties out of
//    the co-occurrence matrices.
//
// The Ingester runs stages 2 through 4 once per file, several files at a
// time. A Reader and its Handler are never shared between goroutines.
package wdk
