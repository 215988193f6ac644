// Package simplecms provides the content core of a small catalogue site:
// products, blog posts, home-page logos and the two singleton documents that
// back the home page and contact page.
//
// Products and blog posts are not flat records. Each owns an ordered list of
// typed content blocks (title, image gallery, rich text, specification,
// table, video, manual download). The block list is validated and
// renumbered on every write so that block order is always the dense
// sequence 0..N-1 of the submitted array.
//
// A single Service interface orchestrates validation, ordering and uploads
// on top of a pluggable Repository (memory, Postgres, MongoDB) and one or
// more BlobStores (memory, filesystem, S3) provided under subpackages.
package simplecms
