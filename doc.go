// mdk is the Metadata Dev Kit. It contains the pieces needed to turn
// discovery metadata records describing scientific datasets into flat,
// index-ready documents, and to keep those documents consistent in the
// search index across repeated ingestion runs.
//
// Of principal importance in mdk is the ingest pipeline. Interfaces and
// implementations of each stage listed below live in this package, and
// implementations which rely on other software (Solr, Kafka, S3, WMS,
// OPeNDAP) are in sub-packages.
//
// 1. Source
//
//    A mdk.Source produces metadata records one at a time. Records come
//    from wherever metadata lives - directories full of XML files, Kafka
//    topics carrying harvested documents, S3 buckets holding exports.
//    Different Sources know how to talk to the system holding the records
//    and hand them out behind one interface. A Source does not interpret
//    the record beyond decoding the XML tree; all field semantics belong
//    to the Transformer.
//
// 2. Transformer
//
//    The Transformer does the heavy lifting: it validates required fields
//    and controlled vocabularies, normalizes the "one-or-many" shape
//    ambiguity that the source schema permits everywhere, reduces temporal
//    and geographic extents, flattens every repeated group (personnel,
//    data centers, platforms, citations, keywords, related information)
//    into positionally aligned multi-valued fields, and emits a single
//    flat Document per record.
//
// 3. Linker
//
//    Dataset records come in two levels: aggregate (parent) datasets and
//    the individual (child) datasets beneath them. The Linker performs the
//    read-modify-write against the index that records a child in its
//    parent's child-reference list, idempotently, so the same child can be
//    ingested any number of times.
//
// 4. Indexer
//
//    The Indexer is responsible for getting Documents into the search
//    index and back out again. The solr sub-package implements it against
//    an Apache Solr core.
package mdk
