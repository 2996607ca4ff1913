package mysql

const upsertHotelSQL = `
INSERT INTO hotels
  (id, name, location, city, state, description, amenities, price_range,
   rating, review_count, type, image_url, affiliate_link, attractions,
   lat, lng, region_id, region_name, region_slug)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name           = VALUES(name),
  location       = VALUES(location),
  city           = VALUES(city),
  state          = VALUES(state),
  description    = VALUES(description),
  amenities      = VALUES(amenities),
  price_range    = VALUES(price_range),
  rating         = VALUES(rating),
  review_count   = VALUES(review_count),
  type           = VALUES(type),
  image_url      = VALUES(image_url),
  affiliate_link = VALUES(affiliate_link),
  attractions    = VALUES(attractions),
  lat            = VALUES(lat),
  lng            = VALUES(lng),
  region_id      = VALUES(region_id),
  region_name    = VALUES(region_name),
  region_slug    = VALUES(region_slug),
  updated_at     = CURRENT_TIMESTAMP
`

const hotelColumns = `
  id, name, location, city, state, description, amenities, price_range,
  rating, review_count, type, image_url, affiliate_link, attractions,
  lat, lng, region_id, region_name, region_slug
`

const getHotelSQL = `SELECT` + hotelColumns + `FROM hotels WHERE id = ?`

const listHotelsSQL = `SELECT` + hotelColumns + `FROM hotels ORDER BY id`

const upsertEmbeddingSQL = `
INSERT INTO hotel_embeddings
  (hotel_id, vector, snapshot, template_version, updated_at)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  vector           = VALUES(vector),
  snapshot         = VALUES(snapshot),
  template_version = VALUES(template_version),
  updated_at       = VALUES(updated_at)
`

const listEmbeddingsSQL = `
SELECT hotel_id, vector, snapshot, template_version, updated_at
FROM hotel_embeddings
ORDER BY hotel_id
`
