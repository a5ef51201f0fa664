package sanity

// GROQ queries. Parameters are bound by Client.Query as $name.
const (
	seriesListQuery = `*[_type == "series"] | order(order asc) {
  _id,
  title,
  "slug": slug.current,
  order,
  "galleries": galleries[]->{
    _id,
    title,
    "slug": slug.current,
    "imageCount": count(images)
  }
}`

	galleryBySlugsQuery = `*[_type == "gallery" && slug.current == $gallerySlug && series->slug.current == $seriesSlug][0] {
  _id,
  title,
  "slug": slug.current,
  "seriesSlug": series->slug.current,
  "seriesTitle": series->title,
  year,
  caption,
  "layoutBlocks": layoutBlocks[]{
    _type,
    _key,
    _type == "galleryLayoutBlockText" => {
      "body": body
    },
    _type == "galleryLayoutBlockImage" => {
      "imageRef": image.asset._ref,
      "dimensions": image.asset->metadata.dimensions,
      "alt": image.alt,
      caption
    }
  },
  "photos": images[]{
    "asset": asset->{_id},
    "dimensions": asset->metadata.dimensions,
    alt,
    caption
  }
}`

	// collectionsQuery flattens each series' galleries into one photo list.
	collectionsQuery = `*[_type == "series"] | order(order asc) {
  title,
  "slug": slug.current,
  "photos": galleries[]->images[]{
    "asset": asset->{_id},
    "dimensions": asset->metadata.dimensions,
    alt,
    caption
  }
}`

	infoPageBySlugQuery = `*[_type == "infoPage" && slug == $slug][0] {
  slug,
  title,
  body
}`

	infoPageSlugsQuery = `*[_type == "infoPage"].slug`

	contactQuery = `*[_type == "contact"][0] {
  body
}`

	homeQuery = `*[_type == "home"][0] {
  "heroImageRef": heroImage.asset._ref,
  heroImageMargin,
  intro
}`

	siteSettingsQuery = `*[_type == "siteSettings"][0] {
  title
}`
)
